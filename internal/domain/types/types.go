// Package types contains ranking records shared by the engine and its
// presentation layers.
package types

// Entry is one entity's placement in a ranking view.
type Entry struct {
	Rank       int     `json:"rank"`
	Tier       string  `json:"tier"`
	Score      float64 `json:"score"`
	Percentile int     `json:"percentile"`

	SpeciesID string `json:"speciesId"`
	Name      string `json:"name"`
	Dex       int    `json:"dex"`
	FamilyID  string `json:"familyId,omitempty"`
	LowestDex int    `json:"lowestDex,omitempty"`

	// BestAttackType and Effectiveness are set on counter views.
	BestAttackType string  `json:"bestAttackType,omitempty"`
	Effectiveness  float64 `json:"effectiveness,omitempty"`

	// BestLeague, its CP cap and Leagues are set on PVP views.
	BestLeague string `json:"bestLeague,omitempty"`
	CPCap      int    `json:"cpCap,omitempty"`
	Leagues    int    `json:"leagues,omitempty"`

	FastMove    string `json:"fastMove,omitempty"`
	ChargedMove string `json:"chargedMove,omitempty"`

	Shadow    bool `json:"shadow,omitempty"`
	Estimated bool `json:"estimated,omitempty"`
}

// Skip reasons recorded on Skipped entries.
const (
	ReasonValidation       = "validation"
	ReasonInsufficientData = "insufficient_data"
	ReasonUnranked         = "unranked"
	ReasonScoringFailed    = "scoring_failed"
)

// Skipped is an entity excluded from a view and why.
type Skipped struct {
	SpeciesID string `json:"speciesId"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
}
