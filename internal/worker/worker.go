// Package worker implements per-batch processing of page ids into stored
// articles and snippets.
package worker

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/citesweep/citesweep/internal/anchor"
	"github.com/citesweep/citesweep/internal/metrics"
	"github.com/citesweep/citesweep/internal/pipeline"
	"github.com/citesweep/citesweep/internal/snippetid"
)

// Config controls Worker behavior.
type Config struct {
	// WikiURL is the article URL prefix, e.g. https://en.wikipedia.org/wiki/.
	WikiURL        string
	SnippetMinSize int
	SnippetMaxSize int
	// LeadSection is the anchor label used for snippets found before the
	// first heading.
	LeadSection string
}

// Worker processes one batch of page ids end to end. Each Worker owns a
// private fetch client, extractor and store connection; nothing is shared
// across workers.
type Worker struct {
	fetcher   pipeline.PageFetcher
	extractor pipeline.SnippetExtractor
	store     pipeline.SnippetStore
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	fetcher pipeline.PageFetcher,
	extractor pipeline.SnippetExtractor,
	store pipeline.SnippetStore,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// Close releases the Worker's store connection.
func (w *Worker) Close() {
	if w.store != nil {
		w.store.Close()
	}
}

type pageRows struct {
	article  pipeline.Article
	snippets []pipeline.Snippet
}

// ProcessBatch fetches every page in the batch, extracts snippets and
// writes one article row plus its snippet rows per page that produced at
// least one snippet.
//
// All pages are staged before any write happens, so an error partway
// through fetch or extraction drops the whole batch, including pages that
// were already staged. Pages whose write completed before a later page's
// write failed do stand. This whole-batch drop is deliberate: a batch is
// the unit of failure isolation, not the page.
func (w *Worker) ProcessBatch(ctx context.Context, batch []pipeline.PageID) error {
	var staged []pageRows
	for page, err := range w.fetcher.FetchPages(ctx, batch) {
		if err != nil {
			return fmt.Errorf("fetch batch: %w", err)
		}
		rows, err := w.buildRows(page)
		if err != nil {
			return fmt.Errorf("extract page %s: %w", page.ID, err)
		}
		if rows == nil {
			metrics.ObservePage("skipped")
			continue
		}
		staged = append(staged, *rows)
	}

	for _, p := range staged {
		if err := w.store.InsertArticle(ctx, p.article); err != nil {
			return fmt.Errorf("write page %s: %w", p.article.PageID, err)
		}
		if err := w.store.InsertSnippets(ctx, p.snippets); err != nil {
			return fmt.Errorf("write page %s: %w", p.article.PageID, err)
		}
		metrics.ObservePage("stored")
		metrics.AddSnippets(len(p.snippets))
		w.logger.Debug("page stored",
			zap.String("pageid", string(p.article.PageID)),
			zap.String("title", p.article.Title),
			zap.Int("snippets", len(p.snippets)),
		)
	}
	return nil
}

// buildRows extracts snippets for one page. It returns nil for pages with
// zero qualifying snippets; those are skipped, never written.
func (w *Worker) buildRows(page pipeline.Page) (*pageRows, error) {
	sections, err := w.extractor.Extract(page.Text, w.cfg.SnippetMinSize, w.cfg.SnippetMaxSize)
	if err != nil {
		return nil, err
	}

	var snippets []pipeline.Snippet
	for _, group := range sections {
		section := group.Section
		if section == "" {
			section = w.cfg.LeadSection
		}
		sectionAnchor := anchor.FromSection(section)
		for _, text := range group.Snippets {
			snippets = append(snippets, snippetid.ForPage(page, text, sectionAnchor))
		}
	}
	if len(snippets) == 0 {
		return nil, nil
	}

	return &pageRows{
		article: pipeline.Article{
			PageID: page.ID,
			URL:    w.cfg.WikiURL + strings.ReplaceAll(page.Title, " ", "_"),
			Title:  page.Title,
		},
		snippets: snippets,
	}, nil
}
