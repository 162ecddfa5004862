package location

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold makes a name comparable: diacritics stripped, lower-cased, inner
// whitespace collapsed to single spaces.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Slug turns a display name into an identifier
func Slug(s string) string {
	return strings.ReplaceAll(Fold(s), " ", "-")
}

// Path builds the fully-qualified district::ward[::street] key used for fee overrides
func Path(district, ward, street string) string {
	parts := []string{Fold(district), Fold(ward)}
	if s := Fold(street); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "::")
}

// NormalizePath folds every segment of an already joined path
func NormalizePath(path string) string {
	segs := strings.Split(path, "::")
	for i := range segs {
		segs[i] = Fold(segs[i])
	}
	return strings.Join(segs, "::")
}
