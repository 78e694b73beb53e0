package search

import (
	"strings"
	"unicode"
)

// tokenize lower-cases text and splits it on anything that is not a
// letter or digit. The same function serves indexing and querying so
// both sides agree on term boundaries.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// stripTags removes HTML/XML markup so only rendered text is indexed.
// Script and style bodies are dropped entirely.
func stripTags(html string) string {
	var b strings.Builder
	b.Grow(len(html))

	inTag := false
	skipUntil := "" // closing tag whose body is being skipped
	i := 0
	for i < len(html) {
		c := html[i]
		if skipUntil != "" {
			if c == '<' && hasCaseInsensitivePrefix(html[i:], skipUntil) {
				i += len(skipUntil)
				skipUntil = ""
				inTag = true
				continue
			}
			i++
			continue
		}
		switch {
		case c == '<':
			rest := html[i:]
			if hasCaseInsensitivePrefix(rest, "<script") {
				skipUntil = "</script"
			} else if hasCaseInsensitivePrefix(rest, "<style") {
				skipUntil = "</style"
			}
			inTag = true
			i++
		case c == '>':
			if inTag {
				inTag = false
				b.WriteByte(' ')
			} else {
				b.WriteByte(c)
			}
			i++
		default:
			if !inTag {
				b.WriteByte(c)
			}
			i++
		}
	}
	return b.String()
}

func hasCaseInsensitivePrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
