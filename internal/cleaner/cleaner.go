// Package cleaner prepares raw address text for tagging: whitespace and
// punctuation cleanup, diacritic stripping and PO Box variant folding.
package cleaner

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	commaSpacing = regexp.MustCompile(`\s*,\s*`)
	poBoxVariant = regexp.MustCompile(`(?i)\b(?:P\.?\s*O\.?\s*BOX|POST\s+OFFICE\s+BOX)\b`)
)

// StripDiacritics removes combining marks so "café" compares as "cafe".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		// Non-Latin input the transform chain cannot handle; transliterate.
		return unidecode.Unidecode(s)
	}
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Clean collapses whitespace, normalizes comma spacing, strips diacritics and
// folds PO Box spellings ("P.O. Box", "Post Office Box") to "PO BOX". The
// result is what the tagger sees; the verbatim input is kept separately.
func Clean(raw string) string {
	s := StripDiacritics(raw)
	s = strings.Join(strings.Fields(s), " ")
	s = commaSpacing.ReplaceAllString(s, ", ")
	s = poBoxVariant.ReplaceAllString(s, "PO BOX")
	return strings.TrimSpace(s)
}

// Fingerprint derives the cache key for a raw address. Keyed on the cleaned
// form so trivially different spellings of the same address share an entry.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(strings.ToUpper(Clean(raw))))
	return fmt.Sprintf("sha256:%x", sum)
}
