package zimgo

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reserved metadata names with their archive capitalization.
const (
	MetadataTitle       = "Title"
	MetadataDescription = "Description"
	MetadataLanguage    = "Language"
	MetadataDate        = "Date"
	MetadataCreator     = "Creator"
	MetadataPublisher   = "Publisher"
)

// DateMetadataLayout is the serialization layout of the Date metadata.
const DateMetadataLayout = "2006-01-02"

// NormalizeMetadataName maps a metadata name to the archive's reserved
// capitalization convention: the first rune is upper-cased, the rest is
// preserved ("title" → "Title", "Illustration_48x48@1" unchanged).
func NormalizeMetadataName(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// IllustrationMetadataName returns the reserved metadata name for a
// square illustration of the given pixel size.
func IllustrationMetadataName(size int) string {
	return fmt.Sprintf("Illustration_%dx%d@1", size, size)
}

// illustrationSize parses an illustration metadata name back into its
// pixel size; ok is false for non-illustration names.
func illustrationSize(name string) (int, bool) {
	rest, found := strings.CutPrefix(name, "Illustration_")
	if !found {
		return 0, false
	}
	var w, h int
	var scale int
	if _, err := fmt.Sscanf(rest, "%dx%d@%d", &w, &h, &scale); err != nil {
		return 0, false
	}
	if w != h || scale != 1 {
		return 0, false
	}
	return w, true
}
