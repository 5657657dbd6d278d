package catalog

import (
	"regexp"
	"strings"
	"unicode"
)

// codePattern is the shape of a mechanographic code: two letters then
// 7 to 10 alphanumerics (e.g. PZIS022008, PZEE00101V).
var codePattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{7,10}$`)

// CanonicalCode strips all whitespace and upper-cases a query.
func CanonicalCode(q string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, q))
}

// LooksLikeCode reports whether q has the shape of a mechanographic code.
// It does not check that the code exists.
func LooksLikeCode(q string) bool {
	return codePattern.MatchString(CanonicalCode(q))
}
