package family

import (
	"sort"

	"github.com/okian/raidtier/internal/domain/model"
)

// Info returns the family metadata of one entity.
func (idx *Index) Info(speciesID string) (Info, bool) {
	in, ok := idx.info[speciesID]
	return in, ok
}

// Family returns a family by id.
func (idx *Index) Family(familyID string) (Family, bool) {
	f, ok := idx.families[familyID]
	if !ok {
		return Family{}, false
	}
	return *f, true
}

// Of returns the family an entity belongs to.
func (idx *Index) Of(speciesID string) (Family, bool) {
	in, ok := idx.info[speciesID]
	if !ok {
		return Family{}, false
	}
	return idx.Family(in.FamilyID)
}

// Families returns every family ordered by lowest dex number, then id.
func (idx *Index) Families() []Family {
	out := make([]Family, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, *idx.families[id])
	}
	return out
}

// Len returns the number of families.
func (idx *Index) Len() int { return len(idx.families) }

// Chain returns the entity's evolution line without variant forms, base
// first.
func (idx *Index) Chain(speciesID string) []string {
	f, ok := idx.Of(speciesID)
	if !ok {
		return nil
	}
	var out []string
	for _, id := range f.Members {
		if !idx.info[id].Variants.Any() {
			out = append(out, id)
		}
	}
	return out
}

// Variants returns every family member sharing the entity's base name,
// including the entity itself.
func (idx *Index) Variants(speciesID string) []string {
	f, ok := idx.Of(speciesID)
	if !ok {
		return nil
	}
	base := BaseName(speciesID)
	var out []string
	for _, id := range f.Members {
		if BaseName(id) == base {
			out = append(out, id)
		}
	}
	return out
}

// Less orders two entities by family lowest dex, family id, stage, dex and
// species id. Unknown entities sort last.
func (idx *Index) Less(a, b model.Entity) bool {
	ia, oka := idx.info[a.SpeciesID]
	ib, okb := idx.info[b.SpeciesID]
	switch {
	case oka != okb:
		return oka
	case ia.LowestDex != ib.LowestDex:
		return ia.LowestDex < ib.LowestDex
	case ia.FamilyID != ib.FamilyID:
		return ia.FamilyID < ib.FamilyID
	case ia.Stage != ib.Stage:
		return ia.Stage < ib.Stage
	case dexOf(a) != dexOf(b):
		return dexOf(a) < dexOf(b)
	}
	return a.SpeciesID < b.SpeciesID
}

// SortByFamily returns a copy of entities ordered so families are
// contiguous and appear by their earliest dex number.
func (idx *Index) SortByFamily(entities []model.Entity) []model.Entity {
	out := append([]model.Entity(nil), entities...)
	sort.SliceStable(out, func(i, j int) bool { return idx.Less(out[i], out[j]) })
	return out
}

// FamilyStats summarizes one family.
type FamilyStats struct {
	FamilyID   string `json:"familyId"`
	Members    int    `json:"members"`
	Base       int    `json:"base"`
	Stage1     int    `json:"stage1"`
	Stage2     int    `json:"stage2"`
	Mega       int    `json:"mega"`
	Shadow     int    `json:"shadow"`
	Regional   int    `json:"regional"`
	LowestDex  int    `json:"lowestDex"`
	HighestDex int    `json:"highestDex"`
}

// StatsFor summarizes a family by id.
func (idx *Index) StatsFor(familyID string) (FamilyStats, bool) {
	f, ok := idx.families[familyID]
	if !ok {
		return FamilyStats{}, false
	}
	st := FamilyStats{
		FamilyID:  f.ID,
		Members:   len(f.Members),
		Base:      len(f.Base),
		Stage1:    len(f.Stage1),
		Stage2:    len(f.Stage2),
		Mega:      len(f.Mega),
		Shadow:    len(f.Shadow),
		Regional:  len(f.Regional),
		LowestDex: f.LowestDex,
	}
	for _, id := range f.Members {
		if d := idx.info[id].dex; d != NoDex && d > st.HighestDex {
			st.HighestDex = d
		}
	}
	return st, true
}

// Summary describes the whole index.
type Summary struct {
	Families      int    `json:"families"`
	Entities      int    `json:"entities"`
	Largest       int    `json:"largest"`
	LargestFamily string `json:"largestFamily,omitempty"`
	Megas         int    `json:"megas"`
	Shadows       int    `json:"shadows"`
	Regionals     int    `json:"regionals"`
}

// Summary counts families and variant forms. Ties for the largest family go
// to the one earlier in family order.
func (idx *Index) Summary() Summary {
	s := Summary{Families: len(idx.families), Entities: len(idx.info)}
	for _, id := range idx.order {
		f := idx.families[id]
		if len(f.Members) > s.Largest {
			s.Largest = len(f.Members)
			s.LargestFamily = f.ID
		}
		s.Megas += len(f.Mega)
		s.Shadows += len(f.Shadow)
		s.Regionals += len(f.Regional)
	}
	return s
}
