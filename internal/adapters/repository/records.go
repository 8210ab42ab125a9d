package repository

// DatasetRecord is the on-disk dataset layout.
type DatasetRecord struct {
	Pokemon []EntityRecord `json:"pokemon" yaml:"pokemon"`
	Moves   []MoveRecord   `json:"moves" yaml:"moves"`
}

// BaseStatsRecord holds raw base stats. Zero means absent; in lenient mode
// absent stats take the default tag value and the entity is flagged
// estimated.
type BaseStatsRecord struct {
	Attack  int `json:"atk" yaml:"atk" validate:"gte=0" default:"200"`
	Defense int `json:"def" yaml:"def" validate:"gte=0" default:"180"`
	Stamina int `json:"hp" yaml:"hp" validate:"gte=0" default:"180"`
}

// FamilyRecord is an entity's family reference.
type FamilyRecord struct {
	ID         string   `json:"id" yaml:"id"`
	Parent     string   `json:"parent" yaml:"parent"`
	Evolutions []string `json:"evolutions" yaml:"evolutions" validate:"dive,required"`
}

// LeagueRecord is one externally computed PVP league result.
type LeagueRecord struct {
	League string  `json:"league" yaml:"league" validate:"required,oneof=great ultra master"`
	Rank   int     `json:"rank" yaml:"rank" validate:"gte=0"`
	Score  float64 `json:"score" yaml:"score"`
}

// EntityRecord is one raw species record.
type EntityRecord struct {
	SpeciesID    string          `json:"speciesId" yaml:"speciesId" validate:"required"`
	SpeciesName  string          `json:"speciesName" yaml:"speciesName"`
	Dex          int             `json:"dex" yaml:"dex" validate:"gte=0"`
	Types        []string        `json:"types" yaml:"types" validate:"min=1,max=2,dive,required"`
	BaseStats    BaseStatsRecord `json:"baseStats" yaml:"baseStats"`
	FastMoves    []string        `json:"fastMoves" yaml:"fastMoves" validate:"dive,required"`
	ChargedMoves []string        `json:"chargedMoves" yaml:"chargedMoves" validate:"dive,required"`
	Family       *FamilyRecord   `json:"family,omitempty" yaml:"family,omitempty"`
	Tags         []string        `json:"tags" yaml:"tags"`
	Leagues      []LeagueRecord  `json:"leagues" yaml:"leagues" validate:"dive"`
}

// MoveRecord is one raw move record. Energy is signed: gains are fast
// moves, costs are charged moves.
type MoveRecord struct {
	MoveID   string  `json:"moveId" yaml:"moveId" validate:"required"`
	Name     string  `json:"name" yaml:"name"`
	Type     string  `json:"type" yaml:"type" validate:"required"`
	Power    float64 `json:"power" yaml:"power" validate:"gte=0"`
	Energy   int     `json:"energy" yaml:"energy"`
	Cooldown int     `json:"cooldown" yaml:"cooldown" validate:"gt=0"`
}
