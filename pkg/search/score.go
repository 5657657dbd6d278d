// CLAUDE:SUMMARY Additive bag-of-tokens scoring of a free-text query against a record's normalized fields.
package search

import (
	"strings"

	"github.com/hazyhaar/cercaclasse/pkg/catalog"
)

// Scoring weights.
const (
	weightContains     = 1 // token is a substring of the haystack
	weightMunicipality = 3 // token equals the whole municipality
	weightProvince     = 1 // token equals the whole province
)

// document is a record with its normalized comparison fields.
type document struct {
	rec          *catalog.Record
	haystack     string
	municipality string
	province     string
}

func prepare(r *catalog.Record) document {
	return document{
		rec: r,
		haystack: catalog.Normalize(strings.Join([]string{
			r.SchoolName, r.Municipality, r.Province, r.ClassLabel, r.InstitutionName,
		}, " ")),
		municipality: catalog.Normalize(r.Municipality),
		province:     catalog.Normalize(r.Province),
	}
}

// tokenize splits a query into normalized tokens.
func tokenize(query string) []string {
	return strings.Fields(catalog.Normalize(query))
}

// score applies the three rules: +1 per token contained in the haystack,
// then +3 per token equal to the municipality and +1 per token equal to the
// province. A token counts once per rule regardless of repetitions.
func (d *document) score(tokens []string) int {
	s := 0
	for _, t := range tokens {
		if strings.Contains(d.haystack, t) {
			s += weightContains
		}
	}
	for _, t := range tokens {
		if t == d.municipality {
			s += weightMunicipality
		}
		if t == d.province {
			s += weightProvince
		}
	}
	return s
}

// Score returns the relevance of r for a free-text query, 0 when the query
// has no tokens or nothing matches.
func Score(query string, r catalog.Record) int {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return 0
	}
	d := prepare(&r)
	return d.score(tokens)
}
