// Package ranking orchestrates performance scoring, family ordering and
// tier classification into ranking views.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/raidtier/internal/domain/battle"
	"github.com/okian/raidtier/internal/domain/family"
	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/tier"
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/internal/domain/types"
	"github.com/okian/raidtier/pkg/logger"
	"github.com/okian/raidtier/pkg/metrics"
)

// Aggregator builds ranking views. It keeps no state between calls apart
// from the optional memo.
type Aggregator struct {
	calc       *battle.Calculator
	numClasses int
	labels     []string
	runner     Runner
	memo       Memo
	log        logger.Logger
	metrics    *metrics.Manager
}

// New builds an Aggregator. Labels must match the class count.
func New(opts ...Option) (*Aggregator, error) {
	a := defaults()
	for _, opt := range opts {
		opt(a)
	}
	if err := tier.ValidateLabels(a.labels, a.numClasses); err != nil {
		return nil, err
	}
	return a, nil
}

// Calculator returns the performance calculator in use.
func (a *Aggregator) Calculator() *battle.Calculator { return a.calc }

// Labels returns the tier labels, best first.
func (a *Aggregator) Labels() []string { return append([]string(nil), a.labels...) }

// RankOverall ranks every entity by its average eDPS across its native
// types against a neutral defender.
func (a *Aggregator) RankOverall(ctx context.Context, ds *model.Dataset) (*View, error) {
	return a.rank(ctx, ds, Overall, "", a.scoreOverall)
}

// RankByType ranks entities that have, or can attack with, the given type
// by their average eDPS against every type weak to it.
func (a *Aggregator) RankByType(ctx context.Context, ds *model.Dataset, attack typechart.Type) (*View, error) {
	if !attack.Valid() {
		return nil, fmt.Errorf("%w: %d", typechart.ErrUnknownType, uint8(attack))
	}
	weak := a.calc.Chart().WeakTo(attack)
	return a.rank(ctx, ds, ByType, attack.String(), func(e model.Entity, fast, charged []model.Move) (scored, error) {
		return a.scoreByType(e, fast, charged, attack, weak)
	})
}

// RankCounters ranks the best attackers against a defending type set. Each
// entry records the attack type it uses and that type's multiplier.
func (a *Aggregator) RankCounters(ctx context.Context, ds *model.Dataset, defenders ...typechart.Type) (*View, error) {
	if len(defenders) == 0 {
		return nil, ErrNoDefenders
	}
	for _, d := range defenders {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %d", typechart.ErrUnknownType, uint8(d))
		}
	}
	return a.rank(ctx, ds, Counters, joinTypes(defenders), func(e model.Entity, fast, charged []model.Move) (scored, error) {
		return a.scoreCounter(e, fast, charged, defenders)
	})
}

// RankPVP ranks entities by their composite league score.
func (a *Aggregator) RankPVP(ctx context.Context, ds *model.Dataset) (*View, error) {
	return a.rank(ctx, ds, PVP, "", a.scorePVP)
}

// Performance evaluates one entity against a defender set; an empty set is
// a neutral defender.
func (a *Aggregator) Performance(ctx context.Context, ds *model.Dataset, speciesID string, defenders []typechart.Type) (*battle.Performance, error) {
	e, ok := ds.Entity(speciesID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, speciesID)
	}
	fast, charged, err := resolveMoves(ds, e)
	if err != nil {
		return nil, err
	}
	return a.calc.Performance(ctx, e, fast, charged, defenders)
}

// outcome is one entity's result inside a view.
type outcome struct {
	entity model.Entity
	score  scored
	err    error
}

// scoreFunc scores one entity. A result with include unset leaves the
// entity out of the view without recording it as skipped.
type scoreFunc func(e model.Entity, fast, charged []model.Move) (scored, error)

func (a *Aggregator) rank(ctx context.Context, ds *model.Dataset, kind Kind, param string, score scoreFunc) (*View, error) {
	start := time.Now()
	if ds == nil || len(ds.Entities) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrEmptyPopulation)
	}

	var key string
	if a.memo != nil {
		key = a.memoKey(ds, kind, param)
		if v, ok := a.memo.Get(ctx, key); ok {
			a.metrics.RecordCache(metrics.CacheHit)
			cp := *v
			cp.Cached = true
			return &cp, nil
		}
		a.metrics.RecordCache(metrics.CacheMiss)
	}

	families := family.Build(ds.Entities)
	population := families.SortByFamily(ds.Entities)

	results := make([]outcome, len(population))
	err := a.runner.Run(ctx, len(population), func(_ context.Context, i int) {
		e := population[i]
		results[i].entity = e
		defer func() {
			if r := recover(); r != nil {
				results[i].score = scored{}
				results[i].err = fmt.Errorf("%w: %v", errScoringFailed, r)
			}
		}()
		if kind != PVP {
			if err := battle.ValidateEntity(e); err != nil {
				results[i].err = err
				return
			}
		}
		fast, charged, err := resolveMoves(ds, e)
		if err != nil && kind != PVP {
			results[i].err = err
			return
		}
		results[i].score, results[i].err = score(e, fast, charged)
	})
	if err != nil {
		return nil, fmt.Errorf("rank %s: %w", kind, err)
	}

	view := &View{
		RunID:   uuid.NewString(),
		Kind:    kind,
		Param:   param,
		Labels:  a.Labels(),
		Entries: []types.Entry{},
		Skipped: []types.Skipped{},
	}

	ranked := make([]outcome, 0, len(results))
	for _, r := range results {
		switch {
		case r.err != nil:
			view.Skipped = append(view.Skipped, skipOf(r.entity.SpeciesID, r.err))
		case r.score.include:
			ranked = append(ranked, r)
		}
	}
	for _, s := range view.Skipped {
		a.metrics.RecordSkipped(s.Reason)
		a.log.Debug(ctx, "entity skipped",
			logger.String("view", string(kind)),
			logger.String("speciesId", s.SpeciesID),
			logger.String("reason", s.Reason),
			logger.String("detail", s.Detail))
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: %s %s has no valid entities (%d skipped)", ErrEmptyPopulation, kind, param, len(view.Skipped))
	}

	// The population is already in family order, so a stable sort keeps
	// that order among equal scores.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score.value > ranked[j].score.value })

	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		scores[i] = r.score.value
	}
	jenksStart := time.Now()
	cls, err := tier.Classify(scores, a.numClasses)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", kind, err)
	}
	a.metrics.RecordJenks(time.Since(jenksStart))
	view.Breaks = cls.Breaks
	view.Degenerate = cls.Degenerate
	if cls.Degenerate && len(ranked) > 1 {
		a.metrics.RecordDegenerate(string(kind))
		a.log.Warn(ctx, "single tier assigned",
			logger.String("view", string(kind)),
			logger.String("param", param),
			logger.Error(tier.ErrDegenerateDistribution))
	}

	view.Count = len(ranked)
	view.Entries = make([]types.Entry, len(ranked))
	for i, r := range ranked {
		rank := i + 1
		in, _ := families.Info(r.entity.SpeciesID)
		entry := types.Entry{
			Rank:       rank,
			Tier:       tier.Of(r.score.value, cls.Breaks, a.labels),
			Score:      r.score.value,
			Percentile: Percentile(rank, view.Count),
			SpeciesID:  r.entity.SpeciesID,
			Name:       r.entity.Name,
			Dex:        r.entity.Dex,
			FamilyID:   in.FamilyID,
			LowestDex:  in.LowestDex,
			Shadow:     r.entity.Tags.Shadow,
			Estimated:  r.entity.Estimated,
		}
		r.score.annotate(&entry)
		view.Entries[i] = entry
	}
	view.Summary = tier.Statistics(view.Entries, a.labels)

	if a.memo != nil {
		a.memo.Set(ctx, key, view)
	}

	took := time.Since(start)
	a.metrics.RecordView(string(kind), took)
	a.log.Info(ctx, "ranking view computed",
		logger.String("runId", view.RunID),
		logger.String("view", string(kind)),
		logger.String("param", param),
		logger.Int("count", view.Count),
		logger.Int("skipped", len(view.Skipped)),
		logger.Bool("degenerate", view.Degenerate),
		logger.Duration("took", took))
	return view, nil
}

func skipOf(id string, err error) types.Skipped {
	reason := types.ReasonValidation
	switch {
	case errors.Is(err, battle.ErrInsufficientData):
		reason = types.ReasonInsufficientData
	case errors.Is(err, errUnranked):
		reason = types.ReasonUnranked
	case errors.Is(err, errScoringFailed):
		reason = types.ReasonScoringFailed
	}
	return types.Skipped{SpeciesID: id, Reason: reason, Detail: err.Error()}
}

// resolveMoves looks up an entity's moves; unknown ids are a validation
// error for that entity.
func resolveMoves(ds *model.Dataset, e model.Entity) (fast, charged []model.Move, err error) {
	fast, missing := ds.ResolveMoves(e.FastMoves)
	if len(missing) > 0 {
		return nil, nil, &battle.ValidationError{ID: e.SpeciesID, Field: "fastMoves", Value: missing, Reason: "unknown move"}
	}
	charged, missing = ds.ResolveMoves(e.ChargedMoves)
	if len(missing) > 0 {
		return nil, nil, &battle.ValidationError{ID: e.SpeciesID, Field: "chargedMoves", Value: missing, Reason: "unknown move"}
	}
	return fast, charged, nil
}

func joinTypes(ts []typechart.Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ","
		}
		s += t.String()
	}
	return s
}
