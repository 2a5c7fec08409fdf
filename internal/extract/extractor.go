// Package extract pulls citation-needed snippets out of raw wikitext.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/citesweep/citesweep/internal/pipeline"
)

var (
	markerRe  = regexp.MustCompile(`(?i)\{\{\s*(?:citation[ -]needed|cn|fact)\s*(?:\|[^{}]*)?\}\}`)
	headingRe = regexp.MustCompile(`^={2,6}([^=].*?)={2,6}\s*$`)
	refPairRe = regexp.MustCompile(`(?s)<ref[^>/]*>.*?</ref>`)
	refSoloRe = regexp.MustCompile(`<ref[^>]*/>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Extractor finds paragraphs flagged with a citation-needed template and
// groups them under the section heading they appear in. The lead section is
// reported with an empty section name.
type Extractor struct{}

// New returns a ready Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract implements pipeline.SnippetExtractor. Snippets outside the
// [minSize, maxSize] byte range are dropped.
func (e *Extractor) Extract(wikitext string, minSize, maxSize int) ([]pipeline.SectionSnippets, error) {
	if minSize < 0 || maxSize < minSize {
		return nil, fmt.Errorf("invalid snippet size bounds [%d, %d]", minSize, maxSize)
	}

	var (
		groups  []pipeline.SectionSnippets
		byName  = map[string]int{}
		section string
		para    []string
	)

	flush := func() {
		if len(para) == 0 {
			return
		}
		text := strings.Join(para, " ")
		para = nil
		if !markerRe.MatchString(text) {
			return
		}
		snippet := clean(text)
		if len(snippet) < minSize || len(snippet) > maxSize {
			return
		}
		i, ok := byName[section]
		if !ok {
			i = len(groups)
			byName[section] = i
			groups = append(groups, pipeline.SectionSnippets{Section: section})
		}
		groups[i].Snippets = append(groups[i].Snippets, snippet)
	}

	for _, line := range strings.Split(wikitext, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			section = strings.TrimSpace(m[1])
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		para = append(para, trimmed)
	}
	flush()

	return groups, nil
}

// clean strips the marker templates, references and comments from a flagged
// paragraph, leaving readable prose.
func clean(text string) string {
	text = markerRe.ReplaceAllString(text, "")
	text = commentRe.ReplaceAllString(text, "")
	text = refPairRe.ReplaceAllString(text, "")
	text = refSoloRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
