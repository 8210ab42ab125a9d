package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/raidtier/internal/domain/ranking"
	"github.com/okian/raidtier/internal/domain/typechart"
)

// RankingDependencies computes ranking views over the current dataset.
type RankingDependencies interface {
	RankOverall(ctx context.Context) (*ranking.View, error)
	RankByType(ctx context.Context, attack typechart.Type) (*ranking.View, error)
	RankCounters(ctx context.Context, defenders ...typechart.Type) (*ranking.View, error)
	RankPVP(ctx context.Context) (*ranking.View, error)
	Matchup(ctx context.Context, t typechart.Type) (*typechart.Matchup, error)
}

// RankingsHandler handles /rankings requests.
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleOverall handles GET /rankings/overall.
func (h *RankingsHandler) HandleOverall(w http.ResponseWriter, r *http.Request) {
	h.respond(w, func() (*ranking.View, error) { return h.deps.RankOverall(r.Context()) })
}

// HandleByType handles GET /rankings/type/{type}.
func (h *RankingsHandler) HandleByType(w http.ResponseWriter, r *http.Request) {
	t, err := typechart.ParseType(r.PathValue("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.respond(w, func() (*ranking.View, error) { return h.deps.RankByType(r.Context(), t) })
}

// HandleCounters handles GET /rankings/counters/{type}. The type may be a
// comma separated pair for dual-typed defenders.
func (h *RankingsHandler) HandleCounters(w http.ResponseWriter, r *http.Request) {
	defenders, err := parseTypeList(r.PathValue("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.respond(w, func() (*ranking.View, error) { return h.deps.RankCounters(r.Context(), defenders...) })
}

// HandleMatchup handles GET /types/{type}.
func (h *RankingsHandler) HandleMatchup(w http.ResponseWriter, r *http.Request) {
	t, err := typechart.ParseType(r.PathValue("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	m, err := h.deps.Matchup(r.Context(), t)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandlePVP handles GET /rankings/pvp.
func (h *RankingsHandler) HandlePVP(w http.ResponseWriter, r *http.Request) {
	h.respond(w, func() (*ranking.View, error) { return h.deps.RankPVP(r.Context()) })
}

func (h *RankingsHandler) respond(w http.ResponseWriter, compute func() (*ranking.View, error)) {
	view, err := compute()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// parseTypeList parses "a,b" into at most two types. Empty input yields
// no types.
func parseTypeList(s string) ([]typechart.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: at most two defending types, got %d", ErrBadRequest, len(parts))
	}
	return typechart.ParseTypes(parts)
}
