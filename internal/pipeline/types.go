// Package pipeline defines the records and interfaces shared across the
// citesweep ingestion pipeline.
package pipeline

// PageID is the opaque wiki page identifier supplied by the caller.
type PageID string

// Page is one (id, title, wikitext) tuple yielded by the fetch client.
type Page struct {
	ID    PageID
	Title string
	Text  string
}

// Article is a page that produced at least one snippet. Pages with zero
// qualifying snippets are never materialized as articles.
type Article struct {
	PageID PageID
	URL    string
	Title  string
}

// Snippet is one citation-needed span of article text. ID is a stable
// content hash of the owning page's title plus the snippet text, which is
// what makes re-insertion idempotent.
type Snippet struct {
	ID            string
	Text          string
	SectionAnchor string
	PageID        PageID
}

// SectionSnippets groups extracted snippet texts under the section heading
// they were found in. The lead section is reported with an empty Section.
type SectionSnippets struct {
	Section  string
	Snippets []string
}
