// Package snippetid derives stable primary keys for snippets.
package snippetid

import (
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"

	"github.com/citesweep/citesweep/internal/pipeline"
)

// Make returns the 128-bit content hash of a snippet, keyed on the owning
// page title plus the snippet text and rendered as 32 hex characters. The
// same (title, text) pair always maps to the same id, which is what turns a
// duplicate insert into a no-op instead of an error.
func Make(title, text string) string {
	sum := md5.Sum([]byte(title + text)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// ForPage builds the full snippet row for one extracted span.
func ForPage(page pipeline.Page, text, sectionAnchor string) pipeline.Snippet {
	return pipeline.Snippet{
		ID:            Make(page.Title, text),
		Text:          text,
		SectionAnchor: sectionAnchor,
		PageID:        page.ID,
	}
}
