// CLAUDE:SUMMARY Text normalization for record matching: lowercase, accent strip, punctuation to space, whitespace collapse.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// punctuation is replaced by a single space before whitespace is collapsed.
var punctuation = strings.NewReplacer(
	".", " ", ",", " ", ";", " ", ":", " ", "-", " ", "_", " ",
	"/", " ", `\`, " ", "’", " ", "'", " ", `"`, " ",
	"(", " ", ")", " ", "[", " ", "]", " ",
)

// Normalize canonicalizes free text for comparison (e.g. "Sant'Arcangelo (PZ)" -> "sant arcangelo pz").
// It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(punctuation.Replace(folded)), " ")
}
