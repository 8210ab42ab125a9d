package ranking

import (
	"errors"
	"math"

	"github.com/okian/raidtier/internal/domain/battle"
	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/internal/domain/types"
)

var (
	errUnranked      = errors.New("no qualifying league scores")
	errScoringFailed = errors.New("scoring panicked")
)

// scored is one entity's view score plus what the entry should show.
type scored struct {
	include bool
	value   float64

	moveset    *battle.Moveset
	attackType *typechart.Type
	multiplier float64
	pvp        *battle.PVPResult
}

func (s scored) annotate(e *types.Entry) {
	if s.moveset != nil {
		e.FastMove = s.moveset.Fast.Move.ID
		e.ChargedMove = s.moveset.Charged.Move.ID
	}
	if s.attackType != nil {
		e.BestAttackType = s.attackType.String()
		e.Effectiveness = s.multiplier
	}
	if s.pvp != nil {
		e.BestLeague = string(s.pvp.BestLeague)
		e.CPCap = s.pvp.BestLeague.CPCap()
		e.Leagues = s.pvp.Leagues
	}
}

// restrict keeps the moves of type t, or every move when none match.
func restrict(moves []model.Move, t typechart.Type) []model.Move {
	var out []model.Move
	for _, m := range moves {
		if m.Type == t {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return moves
	}
	return out
}

func hasMoveOfType(t typechart.Type, lists ...[]model.Move) bool {
	for _, l := range lists {
		for _, m := range l {
			if m.Type == t {
				return true
			}
		}
	}
	return false
}

// moveTypes returns the distinct move types in canonical order.
func moveTypes(lists ...[]model.Move) []typechart.Type {
	var seen [typechart.Count]bool
	for _, l := range lists {
		for _, m := range l {
			if m.Type.Valid() {
				seen[m.Type] = true
			}
		}
	}
	var out []typechart.Type
	for i, ok := range seen {
		if ok {
			out = append(out, typechart.Type(i))
		}
	}
	return out
}

func (a *Aggregator) scoreOverall(e model.Entity, fast, charged []model.Move) (scored, error) {
	var (
		sum  float64
		best *battle.Moveset
	)
	for _, t := range e.Types {
		m, err := a.calc.BestMoveset(e, restrict(fast, t), restrict(charged, t), nil)
		if err != nil {
			return scored{}, err
		}
		sum += m.EDPS
		if best == nil || m.EDPS > best.EDPS {
			best = m
		}
	}
	return scored{include: true, value: sum / float64(len(e.Types)), moveset: best}, nil
}

func (a *Aggregator) scoreByType(e model.Entity, fast, charged []model.Move, attack typechart.Type, weak []typechart.Type) (scored, error) {
	if !e.HasType(attack) && !hasMoveOfType(attack, fast, charged) {
		return scored{}, nil
	}
	f, c := restrict(fast, attack), restrict(charged, attack)

	var (
		sum  float64
		best *battle.Moveset
	)
	for _, d := range weak {
		m, err := a.calc.BestMoveset(e, f, c, []typechart.Type{d})
		if err != nil {
			return scored{}, err
		}
		sum += m.EDPS
		if best == nil || m.EDPS > best.EDPS {
			best = m
		}
	}
	return scored{include: true, value: sum / float64(len(weak)), moveset: best}, nil
}

func (a *Aggregator) scoreCounter(e model.Entity, fast, charged []model.Move, defenders []typechart.Type) (scored, error) {
	if len(fast) == 0 || len(charged) == 0 {
		return scored{}, battle.ErrInsufficientData
	}
	chart := a.calc.Chart()
	var out scored
	for _, t := range moveTypes(fast, charged) {
		mult := chart.Effectiveness(t, defenders...)
		if mult <= 1 {
			continue
		}
		m, err := a.calc.BestMoveset(e, restrict(fast, t), restrict(charged, t), defenders)
		if err != nil {
			return scored{}, err
		}
		if out.include && m.EDPS <= out.value {
			continue
		}
		at := t
		out = scored{include: true, value: m.EDPS, moveset: m, attackType: &at, multiplier: mult}
	}
	return out, nil
}

func (a *Aggregator) scorePVP(e model.Entity, _, _ []model.Move) (scored, error) {
	r := battle.PVPComposite(e.LeagueScores)
	if !r.Ranked() {
		return scored{}, errUnranked
	}
	return scored{include: true, value: r.Composite, pvp: &r}, nil
}

func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }
