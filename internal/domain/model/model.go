// Package model contains domain models passed between layers.
package model

import (
	"github.com/okian/raidtier/internal/domain/typechart"
)

// Stats are base stats. Zero means the source did not provide a value.
type Stats struct {
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Stamina int `json:"stamina" yaml:"stamina"`
}

// FamilyRef links an entity to its evolution family.
type FamilyRef struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Parent     string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Evolutions []string `json:"evolutions,omitempty" yaml:"evolutions,omitempty"`
}

// Tags mark variant forms.
type Tags struct {
	Shadow   bool `json:"shadow,omitempty" yaml:"shadow,omitempty"`
	Mega     bool `json:"mega,omitempty" yaml:"mega,omitempty"`
	Regional bool `json:"regional,omitempty" yaml:"regional,omitempty"`
}

// Entity is one species or variant. Entities are read-only once loaded.
type Entity struct {
	SpeciesID    string           `json:"speciesId" yaml:"speciesId"`
	Name         string           `json:"name" yaml:"name"`
	Dex          int              `json:"dex" yaml:"dex"`
	Types        []typechart.Type `json:"types" yaml:"types"`
	Stats        Stats            `json:"stats" yaml:"stats"`
	FastMoves    []string         `json:"fastMoves" yaml:"fastMoves"`
	ChargedMoves []string         `json:"chargedMoves" yaml:"chargedMoves"`
	Family       *FamilyRef       `json:"family,omitempty" yaml:"family,omitempty"`
	Tags         Tags             `json:"tags" yaml:"tags"`
	LeagueScores []LeagueScore    `json:"leagueScores,omitempty" yaml:"leagueScores,omitempty"`

	// Estimated is set when missing stats were substituted with defaults.
	Estimated bool `json:"estimated,omitempty" yaml:"estimated,omitempty"`
}

// HasType reports whether t is one of the entity's native types.
func (e Entity) HasType(t typechart.Type) bool {
	return typechart.Contains(e.Types, t)
}

// Category distinguishes fast from charged moves.
type Category string

// Move categories.
const (
	Fast    Category = "fast"
	Charged Category = "charged"
)

// Move is one attack.
type Move struct {
	ID         string         `json:"moveId" yaml:"moveId"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Type       typechart.Type `json:"type" yaml:"type"`
	Power      float64        `json:"power" yaml:"power"`
	Energy     int            `json:"energy" yaml:"energy"`
	CooldownMs int            `json:"cooldown" yaml:"cooldown"`
	Kind       Category       `json:"category,omitempty" yaml:"category,omitempty"`
}

// Category returns the explicit category, or derives it from the sign of
// Energy: gains are fast moves, costs are charged moves.
func (m Move) Category() Category {
	if m.Kind != "" {
		return m.Kind
	}
	if m.Energy < 0 {
		return Charged
	}
	return Fast
}

// League is a PVP league.
type League string

// Leagues in canonical order.
const (
	GreatLeague  League = "great"
	UltraLeague  League = "ultra"
	MasterLeague League = "master"
)

// Leagues returns every league in canonical order.
func Leagues() []League { return []League{GreatLeague, UltraLeague, MasterLeague} }

// CPCap returns the league's combat power cap.
func (l League) CPCap() int {
	switch l {
	case GreatLeague:
		return 1500
	case UltraLeague:
		return 2500
	case MasterLeague:
		return 10000
	}
	return 0
}

// LeagueScore is an externally supplied PVP result for one league.
type LeagueScore struct {
	League League  `json:"league" yaml:"league"`
	Rank   int     `json:"rank" yaml:"rank"`
	Score  float64 `json:"score" yaml:"score"`
}
