// Package anchor converts section titles into MediaWiki URL-fragment
// anchors. The output must match the wiki's own Sanitizer::escapeId rule
// byte for byte, or deep links into sections land nowhere.
package anchor

import "strings"

const upperhex = "0123456789ABCDEF"

// FromSection encodes a section title as a URL-fragment anchor:
// spaces become underscores, every UTF-8 byte outside [A-Za-z0-9_.-] is
// percent-encoded, the colon escape is restored, and remaining percent
// signs degrade to dots. The colon restore must happen before the percent
// substitution or literal colons are lost.
func FromSection(section string) string {
	section = strings.ReplaceAll(section, " ", "_")

	var b strings.Builder
	b.Grow(len(section))
	for i := 0; i < len(section); i++ {
		c := section[i]
		if safeByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}

	out := strings.ReplaceAll(b.String(), "%3A", ":")
	return strings.ReplaceAll(out, "%", ".")
}

func safeByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '-':
		return true
	}
	return false
}
