package family

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/okian/raidtier/internal/domain/model"
)

// Variants are the orthogonal variant buckets of one entity.
type Variants struct {
	Mega     bool `json:"mega,omitempty"`
	Shadow   bool `json:"shadow,omitempty"`
	Regional bool `json:"regional,omitempty"`
}

// Any reports whether the entity is a variant form.
func (v Variants) Any() bool { return v.Mega || v.Shadow || v.Regional }

var (
	regionalMarkers = []string{"alolan", "galarian", "hisuian", "paldean"}

	variantSuffix = regexp.MustCompile(`(_shadow|_mega.*|_alolan|_galarian|_hisuian|_paldean)$`)

	fold = cases.Fold()
)

// DetectVariants reads variant buckets from tags first and falls back to
// id and display-name conventions.
func DetectVariants(e model.Entity) Variants {
	id := fold.String(e.SpeciesID)
	name := fold.String(e.Name)

	v := Variants{
		Mega:     e.Tags.Mega || strings.Contains(id, "_mega") || strings.HasPrefix(name, "mega "),
		Shadow:   e.Tags.Shadow || strings.HasSuffix(id, "_shadow") || strings.HasPrefix(name, "shadow ") || strings.Contains(name, "(shadow)"),
		Regional: e.Tags.Regional,
	}
	for _, m := range regionalMarkers {
		if strings.Contains(name, m) || strings.HasSuffix(id, "_"+m) {
			v.Regional = true
		}
	}
	return v
}

// BaseName strips variant suffixes from a species id, repeatedly, so that
// "marowak_alolan_shadow" becomes "marowak".
func BaseName(speciesID string) string {
	id := fold.String(speciesID)
	for {
		stripped := variantSuffix.ReplaceAllString(id, "")
		if stripped == id {
			return id
		}
		id = stripped
	}
}
