// Package family groups entities into evolution families and classifies
// each member's stage and variant forms.
package family

import (
	"math"
	"sort"

	"github.com/okian/raidtier/internal/domain/model"
)

// Stage is an entity's position in its evolution line.
type Stage int

// Evolution stages.
const (
	Base   Stage = 0
	Stage1 Stage = 1
	Stage2 Stage = 2
)

func (s Stage) String() string {
	switch s {
	case Base:
		return "base"
	case Stage1:
		return "stage1"
	case Stage2:
		return "stage2"
	}
	return "unknown"
}

// MarshalText encodes the stage name.
func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// NoDex is the dex number assumed for members without one.
const NoDex = 999

// Info is the family metadata attached to one entity.
type Info struct {
	FamilyID  string   `json:"familyId"`
	LowestDex int      `json:"lowestDex"`
	Stage     Stage    `json:"stage"`
	Variants  Variants `json:"variants"`
	CanEvolve bool     `json:"canEvolve"`
	dex       int
}

// Family is one evolution family. Member lists hold species ids ordered by
// stage, then dex, then id.
type Family struct {
	ID        string   `json:"id"`
	LowestDex int      `json:"lowestDex"`
	Members   []string `json:"members"`

	Base     []string `json:"base"`
	Stage1   []string `json:"stage1"`
	Stage2   []string `json:"stage2"`
	Mega     []string `json:"mega"`
	Shadow   []string `json:"shadow"`
	Regional []string `json:"regional"`
}

// Index is the result of Build. It is immutable and safe for concurrent
// reads.
type Index struct {
	families map[string]*Family
	info     map[string]Info
	order    []string
}

// Build groups entities into families. Entities sharing a family id, a
// parent/evolution link, or a base name end up in the same family; an
// entity with none of these forms a family of one. Every distinct species
// id appears in exactly one family; repeated ids keep their first record.
func Build(entities []model.Entity) *Index {
	uniq := make([]model.Entity, 0, len(entities))
	pos := make(map[string]int, len(entities))
	for _, e := range entities {
		if _, dup := pos[e.SpeciesID]; dup {
			continue
		}
		pos[e.SpeciesID] = len(uniq)
		uniq = append(uniq, e)
	}

	links := newLinks(uniq, pos)
	uf := newUnionFind(len(uniq))

	byFamilyID := map[string]int{}
	byBaseName := map[string]int{}
	for i, e := range uniq {
		if e.Family != nil && e.Family.ID != "" {
			if j, ok := byFamilyID[e.Family.ID]; ok {
				uf.union(i, j)
			} else {
				byFamilyID[e.Family.ID] = i
			}
		}
		if p := links.parent[e.SpeciesID]; p != "" {
			uf.union(i, pos[p])
		}
		base := BaseName(e.SpeciesID)
		if j, ok := byBaseName[base]; ok {
			uf.union(i, j)
		} else {
			byBaseName[base] = i
		}
	}

	// Roots are the smallest position in each set, so walking positions in
	// order visits families deterministically.
	groups := map[int][]int{}
	var roots []int
	for i := range uniq {
		r := uf.find(i)
		if r == i {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], i)
	}

	idx := &Index{
		families: make(map[string]*Family, len(roots)),
		info:     make(map[string]Info, len(uniq)),
	}
	for _, r := range roots {
		idx.addFamily(uniq, groups[r], links)
	}

	idx.order = make([]string, 0, len(idx.families))
	for id := range idx.families {
		idx.order = append(idx.order, id)
	}
	sort.Slice(idx.order, func(a, b int) bool {
		fa, fb := idx.families[idx.order[a]], idx.families[idx.order[b]]
		if fa.LowestDex != fb.LowestDex {
			return fa.LowestDex < fb.LowestDex
		}
		return fa.ID < fb.ID
	})
	return idx
}

func (idx *Index) addFamily(all []model.Entity, members []int, links *links) {
	f := &Family{LowestDex: math.MaxInt}
	infos := make([]Info, len(members))
	ids := make([]string, len(members))

	for k, i := range members {
		e := all[i]
		ids[k] = e.SpeciesID
		dex := dexOf(e)
		if dex < f.LowestDex {
			f.LowestDex = dex
		}
		if e.Family != nil && e.Family.ID != "" && (f.ID == "" || e.Family.ID < f.ID) {
			f.ID = e.Family.ID
		}
		infos[k] = Info{
			Stage:     links.stage(e.SpeciesID),
			Variants:  DetectVariants(e),
			CanEvolve: links.canEvolve(e.SpeciesID),
			dex:       dex,
		}
	}

	// Unlinked variant forms take the stage of the regular form they vary.
	regular := map[string]Stage{}
	for k := range members {
		if !infos[k].Variants.Any() {
			regular[BaseName(ids[k])] = infos[k].Stage
		}
	}
	for k := range members {
		if infos[k].Variants.Any() && !links.hasParent(ids[k]) {
			if st, ok := regular[BaseName(ids[k])]; ok {
				infos[k].Stage = st
			}
		}
	}

	order := make([]int, len(members))
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := infos[order[a]], infos[order[b]]
		if ia.Stage != ib.Stage {
			return ia.Stage < ib.Stage
		}
		if ia.dex != ib.dex {
			return ia.dex < ib.dex
		}
		return ids[order[a]] < ids[order[b]]
	})

	if f.ID == "" {
		// Families without an explicit id are named after their first member.
		f.ID = ids[order[0]]
	}

	for _, k := range order {
		id, in := ids[k], infos[k]
		in.FamilyID = f.ID
		in.LowestDex = f.LowestDex
		idx.info[id] = in

		f.Members = append(f.Members, id)
		switch in.Stage {
		case Base:
			f.Base = append(f.Base, id)
		case Stage1:
			f.Stage1 = append(f.Stage1, id)
		case Stage2:
			f.Stage2 = append(f.Stage2, id)
		}
		if in.Variants.Mega {
			f.Mega = append(f.Mega, id)
		}
		if in.Variants.Shadow {
			f.Shadow = append(f.Shadow, id)
		}
		if in.Variants.Regional {
			f.Regional = append(f.Regional, id)
		}
	}

	// A derived id can collide with another family's explicit id; the later
	// family is renamed so every family keeps a distinct key.
	if _, taken := idx.families[f.ID]; taken {
		f.ID = f.ID + "#" + f.Members[0]
		for _, id := range f.Members {
			in := idx.info[id]
			in.FamilyID = f.ID
			idx.info[id] = in
		}
	}
	idx.families[f.ID] = f
}

func dexOf(e model.Entity) int {
	if e.Dex <= 0 {
		return NoDex
	}
	return e.Dex
}

// links resolves parent and child relations from both directions: an
// entity's own family reference and other entities pointing at it.
type links struct {
	parent   map[string]string
	children map[string]int
}

func newLinks(entities []model.Entity, pos map[string]int) *links {
	l := &links{parent: map[string]string{}, children: map[string]int{}}
	for _, e := range entities {
		if e.Family == nil {
			continue
		}
		if p := e.Family.Parent; p != "" && p != e.SpeciesID {
			if _, ok := pos[p]; ok {
				l.setParent(e.SpeciesID, p)
			} else {
				// Parent outside the snapshot still makes this a later stage.
				l.parent[e.SpeciesID] = ""
			}
		}
		for _, child := range e.Family.Evolutions {
			if child == "" || child == e.SpeciesID {
				continue
			}
			l.children[e.SpeciesID]++
			if _, ok := pos[child]; ok {
				l.setParent(child, e.SpeciesID)
			}
		}
	}
	// A parent named only from the child's side still counts as evolving.
	for _, p := range l.parent {
		if p != "" && l.children[p] == 0 {
			l.children[p]++
		}
	}
	return l
}

func (l *links) setParent(child, parent string) {
	if cur, ok := l.parent[child]; ok && cur != "" {
		return
	}
	l.parent[child] = parent
}

func (l *links) hasParent(id string) bool {
	_, ok := l.parent[id]
	return ok
}

func (l *links) canEvolve(id string) bool { return l.children[id] > 0 }

func (l *links) stage(id string) Stage {
	switch {
	case !l.hasParent(id):
		return Base
	case l.canEvolve(id):
		return Stage1
	default:
		return Stage2
	}
}

// unionFind is a disjoint-set over entity positions.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// union keeps the smaller root so results do not depend on call order.
func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	switch {
	case ra == rb:
	case ra < rb:
		uf.parent[rb] = ra
	default:
		uf.parent[ra] = rb
	}
}
