package typechart

import (
	"fmt"
	"strings"
)

// Relation is the qualitative outcome of one attack/defender type pair.
type Relation uint8

// Relations between an attacking and a defending type.
const (
	Neutral Relation = iota
	SuperEffective
	NotVeryEffective
	Immune
)

// Scale maps each relation to a multiplier.
type Scale struct {
	Name             string
	SuperEffective   float64
	NotVeryEffective float64
	Immune           float64
}

// GoScale uses the mobile game's multipliers. Immunity is a double resist.
var GoScale = Scale{Name: "go", SuperEffective: 1.6, NotVeryEffective: 0.625, Immune: 0.390625}

// MainSeriesScale uses the main-series multipliers.
var MainSeriesScale = Scale{Name: "main", SuperEffective: 2, NotVeryEffective: 0.5, Immune: 0}

// ScaleByName returns GoScale for "go" and MainSeriesScale for "main".
func ScaleByName(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GoScale.Name:
		return GoScale, nil
	case MainSeriesScale.Name:
		return MainSeriesScale, nil
	}
	return Scale{}, fmt.Errorf("%w: %q", ErrUnknownScale, name)
}

func (s Scale) multiplier(r Relation) float64 {
	switch r {
	case SuperEffective:
		return s.SuperEffective
	case NotVeryEffective:
		return s.NotVeryEffective
	case Immune:
		return s.Immune
	}
	return 1
}

// relations lists every non-neutral pair; anything absent is neutral.
var relations = map[Type]struct{ super, resisted, immune []Type }{
	Normal:   {resisted: []Type{Rock, Steel}, immune: []Type{Ghost}},
	Fire:     {super: []Type{Grass, Ice, Bug, Steel}, resisted: []Type{Fire, Water, Rock, Dragon}},
	Water:    {super: []Type{Fire, Ground, Rock}, resisted: []Type{Water, Grass, Dragon}},
	Electric: {super: []Type{Water, Flying}, resisted: []Type{Electric, Grass, Dragon}, immune: []Type{Ground}},
	Grass:    {super: []Type{Water, Ground, Rock}, resisted: []Type{Fire, Grass, Poison, Flying, Bug, Dragon, Steel}},
	Ice:      {super: []Type{Grass, Ground, Flying, Dragon}, resisted: []Type{Fire, Water, Ice, Steel}},
	Fighting: {super: []Type{Normal, Ice, Rock, Dark, Steel}, resisted: []Type{Poison, Flying, Psychic, Bug, Fairy}, immune: []Type{Ghost}},
	Poison:   {super: []Type{Grass, Fairy}, resisted: []Type{Poison, Ground, Rock, Ghost}, immune: []Type{Steel}},
	Ground:   {super: []Type{Fire, Electric, Poison, Rock, Steel}, resisted: []Type{Grass, Bug}, immune: []Type{Flying}},
	Flying:   {super: []Type{Grass, Fighting, Bug}, resisted: []Type{Electric, Rock, Steel}},
	Psychic:  {super: []Type{Fighting, Poison}, resisted: []Type{Psychic, Steel}, immune: []Type{Dark}},
	Bug:      {super: []Type{Grass, Psychic, Dark}, resisted: []Type{Fire, Fighting, Poison, Flying, Ghost, Steel, Fairy}},
	Rock:     {super: []Type{Fire, Ice, Flying, Bug}, resisted: []Type{Fighting, Ground, Steel}},
	Ghost:    {super: []Type{Psychic, Ghost}, resisted: []Type{Dark}, immune: []Type{Normal}},
	Dragon:   {super: []Type{Dragon}, resisted: []Type{Steel}, immune: []Type{Fairy}},
	Dark:     {super: []Type{Psychic, Ghost}, resisted: []Type{Fighting, Dark, Fairy}},
	Steel:    {super: []Type{Ice, Rock, Fairy}, resisted: []Type{Fire, Water, Electric, Steel}},
	Fairy:    {super: []Type{Fighting, Dragon, Dark}, resisted: []Type{Fire, Poison, Steel}},
}

// RelationOf returns the qualitative outcome of attack against defend.
func RelationOf(attack, defend Type) Relation {
	r := relations[attack]
	switch {
	case Contains(r.super, defend):
		return SuperEffective
	case Contains(r.resisted, defend):
		return NotVeryEffective
	case Contains(r.immune, defend):
		return Immune
	}
	return Neutral
}

// Chart is an immutable, fully populated effectiveness table.
type Chart struct {
	scale Scale
	table [numTypes][numTypes]float64
}

// NewChart builds a chart for the given scale.
func NewChart(scale Scale) *Chart {
	c := &Chart{scale: scale}
	for a := Type(0); a < numTypes; a++ {
		for d := Type(0); d < numTypes; d++ {
			c.table[a][d] = scale.multiplier(RelationOf(a, d))
		}
	}
	return c
}

// Default returns a chart on GoScale.
func Default() *Chart { return NewChart(GoScale) }

// Scale returns the multipliers the chart was built with.
func (c *Chart) Scale() Scale { return c.scale }

// Multiplier returns the single-type multiplier. Unknown types are neutral.
func (c *Chart) Multiplier(attack, defend Type) float64 {
	if !attack.Valid() || !defend.Valid() {
		return 1
	}
	return c.table[attack][defend]
}

// Effectiveness returns the product of per-type multipliers over the
// defender's types. An empty defender is neutral.
func (c *Chart) Effectiveness(attack Type, defenders ...Type) float64 {
	m := 1.0
	for _, d := range defenders {
		m *= c.Multiplier(attack, d)
	}
	return m
}

// WeakTo returns, in canonical order, every single defending type that
// takes more than neutral damage from attack. When nothing qualifies the
// result is [Normal] so callers always have a representative set.
func (c *Chart) WeakTo(attack Type) []Type {
	var out []Type
	for d := Type(0); d < numTypes; d++ {
		if c.Multiplier(attack, d) > 1 {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return []Type{Normal}
	}
	return out
}

// Resists returns the defending types that take less than neutral damage.
func (c *Chart) Resists(attack Type) []Type {
	var out []Type
	for d := Type(0); d < numTypes; d++ {
		if c.Multiplier(attack, d) < 1 {
			out = append(out, d)
		}
	}
	return out
}

// SuperEffectiveAgainst returns the attack types, in canonical order, whose
// effectiveness against the defender set exceeds neutral.
func (c *Chart) SuperEffectiveAgainst(defenders ...Type) []Type {
	var out []Type
	for a := Type(0); a < numTypes; a++ {
		if c.Effectiveness(a, defenders...) > 1 {
			out = append(out, a)
		}
	}
	return out
}

// Matchup is one type's standing on both sides of the chart. The first two
// lists treat the type as the attacker, the last two as the defender.
type Matchup struct {
	Type          Type   `json:"type"`
	StrongAgainst []Type `json:"strongAgainst"`
	ResistedBy    []Type `json:"resistedBy"`
	WeakTo        []Type `json:"weakTo"`
	Resists       []Type `json:"resists"`
}

// Matchup collects the single-type relations of t.
func (c *Chart) Matchup(t Type) Matchup {
	m := Matchup{
		Type:          t,
		StrongAgainst: []Type{},
		ResistedBy:    append([]Type{}, c.Resists(t)...),
		WeakTo:        append([]Type{}, c.SuperEffectiveAgainst(t)...),
		Resists:       []Type{},
	}
	for o := Type(0); o < numTypes; o++ {
		if c.Multiplier(t, o) > 1 {
			m.StrongAgainst = append(m.StrongAgainst, o)
		}
		if c.Multiplier(o, t) < 1 {
			m.Resists = append(m.Resists, o)
		}
	}
	return m
}
