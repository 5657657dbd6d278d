package search

import (
	"testing"

	"github.com/hazyhaar/cercaclasse/pkg/catalog"
)

var carducci = catalog.Record{
	SchoolCode:      "RMPC000001",
	InstitutionCode: "RMIS000001",
	SchoolName:      "Liceo Classico Giosuè Carducci",
	InstitutionName: "IIS Carducci",
	Municipality:    "Roma",
	Province:        "RM",
	ClassLabel:      "2A",
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		rec   catalog.Record
		want  int
	}{
		{"name and exact municipality", "carducci roma", carducci, 5},
		{"accent and case folded", "GIOSUE", carducci, 1},
		{"partial municipality is substring only", "rom", carducci, 1},
		{"exact province", "rm", carducci, 2},
		{"repeated token counted per occurrence", "roma roma", carducci, 8},
		{"no overlap", "potenza", carducci, 0},
		{"empty query", "", carducci, 0},
		{"punctuation only", " .,;-() ", carducci, 0},
		{"class label", "2a", carducci, 1},
		{
			"multi-word municipality never exact",
			"san fele",
			catalog.Record{SchoolName: "Primaria", Municipality: "San Fele", Province: "PZ"},
			2,
		},
		{
			"apostrophe in municipality",
			"sant arcangelo",
			catalog.Record{Municipality: "Sant'Arcangelo", Province: "PZ"},
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.query, tt.rec); got != tt.want {
				t.Errorf("Score(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestScore_MunicipalityOutweighsProvince(t *testing.T) {
	city := catalog.Record{SchoolName: "Primaria", Municipality: "Matera", Province: "MT"}
	province := catalog.Record{SchoolName: "Primaria", Municipality: "Pisticci", Province: "Matera"}

	if Score("matera", city) <= Score("matera", province) {
		t.Errorf("municipality match %d should outrank province match %d",
			Score("matera", city), Score("matera", province))
	}
}
