package pipeline

import (
	"context"
	"iter"
)

// PageFetcher retrieves current content for a batch of page ids as a lazy,
// finite sequence. Pages with no retrievable title or empty text are omitted
// by the fetcher, not surfaced as errors. A non-nil error terminates the
// sequence.
type PageFetcher interface {
	FetchPages(ctx context.Context, ids []PageID) iter.Seq2[Page, error]
}

// SnippetExtractor turns raw wikitext into per-section snippet groups.
// Snippets shorter than minSize or longer than maxSize are discarded.
type SnippetExtractor interface {
	Extract(wikitext string, minSize, maxSize int) ([]SectionSnippets, error)
}

// SnippetStore persists articles and their snippets.
//
// InsertArticle must fail on a duplicate pageid within a run; InsertSnippets
// must silently ignore duplicate snippet ids.
type SnippetStore interface {
	InsertArticle(ctx context.Context, article Article) error
	InsertSnippets(ctx context.Context, snippets []Snippet) error
	Close()
}
