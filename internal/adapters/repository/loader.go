package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/pkg/logger"
)

// Format is a dataset encoding.
type Format string

// Supported dataset formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Report summarizes one load.
type Report struct {
	Entities  int      `json:"entities"`
	Moves     int      `json:"moves"`
	Rejected  []error  `json:"-"`
	Estimated []string `json:"estimated,omitempty"`
}

// Loader decodes raw records into a validated dataset.
type Loader struct {
	lenient bool
	logger  logger.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and builds a dataset from a JSON or YAML file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*model.Dataset, *Report, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, rep, err := l.Load(ctx, f, format)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, rep, nil
}

// Load decodes r and builds a dataset.
func (l *Loader) Load(ctx context.Context, r io.Reader, format Format) (*model.Dataset, *Report, error) {
	var rec DatasetRecord
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&rec); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&rec); err != nil && err != io.EOF {
			return nil, nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	ds, rep := l.Build(ctx, rec)
	return ds, rep, nil
}

// Build validates records and converts the accepted ones. Rejected records
// are reported, not fatal. Repeated ids keep their first record.
func (l *Loader) Build(ctx context.Context, rec DatasetRecord) (*model.Dataset, *Report) {
	ds := &model.Dataset{Moves: make(map[string]model.Move, len(rec.Moves))}
	rep := &Report{}

	for i := range rec.Moves {
		m, err := convertMove(rec.Moves[i])
		if err == nil {
			if _, dup := ds.Moves[m.ID]; dup {
				err = &ValidationError{ID: m.ID, Reason: ErrDuplicateID.Error()}
			}
		}
		if err != nil {
			rep.Rejected = append(rep.Rejected, err)
			continue
		}
		ds.Moves[m.ID] = m
	}

	seen := make(map[string]bool, len(rec.Pokemon))
	for i := range rec.Pokemon {
		e, err := l.convertEntity(rec.Pokemon[i])
		if err == nil && seen[e.SpeciesID] {
			err = &ValidationError{ID: e.SpeciesID, Reason: ErrDuplicateID.Error()}
		}
		if err != nil {
			rep.Rejected = append(rep.Rejected, err)
			continue
		}
		seen[e.SpeciesID] = true
		if e.Estimated {
			rep.Estimated = append(rep.Estimated, e.SpeciesID)
		}
		ds.Entities = append(ds.Entities, e)
	}

	rep.Entities, rep.Moves = len(ds.Entities), len(ds.Moves)
	for _, err := range rep.Rejected {
		l.logger.Warn(ctx, "record rejected", logger.Error(err))
	}
	l.logger.Info(ctx, "dataset built",
		logger.Int("entities", rep.Entities),
		logger.Int("moves", rep.Moves),
		logger.Int("rejected", len(rep.Rejected)),
		logger.Int("estimated", len(rep.Estimated)))
	return ds, rep
}

var (
	fold  = cases.Fold()
	title = cases.Title(language.English)
)

// NormalizeID folds an id to its canonical lower-case form.
func NormalizeID(id string) string {
	return fold.String(strings.TrimSpace(id))
}

// DisplayName derives a display name from a species id.
func DisplayName(id string) string {
	return title.String(strings.ReplaceAll(id, "_", " "))
}

func normalizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, NormalizeID(id))
	}
	return out
}

// normalizeTypes folds type names and drops the "none" placeholder used
// for single-typed entities.
func normalizeTypes(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeID(n)
		if n == "" || n == "none" {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (l *Loader) convertEntity(r EntityRecord) (model.Entity, error) {
	r.SpeciesID = NormalizeID(r.SpeciesID)
	r.Types = normalizeTypes(r.Types)
	r.FastMoves = normalizeIDs(r.FastMoves)
	r.ChargedMoves = normalizeIDs(r.ChargedMoves)
	for i := range r.Leagues {
		r.Leagues[i].League = NormalizeID(r.Leagues[i].League)
	}

	if err := validateRecord(r.SpeciesID, r); err != nil {
		return model.Entity{}, err
	}
	types, err := typechart.ParseTypes(r.Types)
	if err != nil {
		return model.Entity{}, &ValidationError{ID: r.SpeciesID, Field: "types", Reason: err.Error()}
	}

	estimated := false
	if l.lenient {
		s := r.BaseStats
		if s.Attack == 0 || s.Defense == 0 || s.Stamina == 0 {
			if err := defaults.Set(&r.BaseStats); err != nil {
				return model.Entity{}, &ValidationError{ID: r.SpeciesID, Field: "baseStats", Reason: err.Error()}
			}
			estimated = true
		}
	}

	e := model.Entity{
		SpeciesID:    r.SpeciesID,
		Name:         strings.TrimSpace(r.SpeciesName),
		Dex:          r.Dex,
		Types:        types,
		Stats:        model.Stats{Attack: r.BaseStats.Attack, Defense: r.BaseStats.Defense, Stamina: r.BaseStats.Stamina},
		FastMoves:    r.FastMoves,
		ChargedMoves: r.ChargedMoves,
		Estimated:    estimated,
	}
	if e.Name == "" {
		e.Name = DisplayName(e.SpeciesID)
	}
	if r.Family != nil {
		e.Family = &model.FamilyRef{
			ID:         NormalizeID(r.Family.ID),
			Parent:     NormalizeID(r.Family.Parent),
			Evolutions: normalizeIDs(r.Family.Evolutions),
		}
	}
	for _, tag := range r.Tags {
		switch NormalizeID(tag) {
		case "shadow":
			e.Tags.Shadow = true
		case "mega":
			e.Tags.Mega = true
		case "regional", "alolan", "galarian", "hisuian", "paldean":
			e.Tags.Regional = true
		}
	}
	for _, lr := range r.Leagues {
		e.LeagueScores = append(e.LeagueScores, model.LeagueScore{
			League: model.League(lr.League),
			Rank:   lr.Rank,
			Score:  lr.Score,
		})
	}
	return e, nil
}

func convertMove(r MoveRecord) (model.Move, error) {
	r.MoveID = NormalizeID(r.MoveID)
	if err := validateRecord(r.MoveID, r); err != nil {
		return model.Move{}, err
	}
	t, err := typechart.ParseType(r.Type)
	if err != nil {
		return model.Move{}, &ValidationError{ID: r.MoveID, Field: "type", Reason: err.Error()}
	}
	m := model.Move{
		ID:         r.MoveID,
		Name:       strings.TrimSpace(r.Name),
		Type:       t,
		Power:      r.Power,
		Energy:     r.Energy,
		CooldownMs: r.Cooldown,
	}
	if m.Name == "" {
		m.Name = DisplayName(m.ID)
	}
	m.Kind = m.Category()
	return m, nil
}
