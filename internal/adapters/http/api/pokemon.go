package api

import (
	"context"
	"net/http"

	"github.com/okian/raidtier/internal/domain/battle"
	"github.com/okian/raidtier/internal/domain/family"
	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/typechart"
)

// PokemonDependencies answers per-entity queries.
type PokemonDependencies interface {
	Entity(ctx context.Context, speciesID string) (*model.Entity, error)
	Performance(ctx context.Context, speciesID string, defenders []typechart.Type) (*battle.Performance, error)
	Family(ctx context.Context, speciesID string) (*FamilyResponse, error)
	Families(ctx context.Context) ([]family.FamilyStats, error)
}

// PokemonHandler handles per-entity requests.
type PokemonHandler struct {
	deps PokemonDependencies
}

// NewPokemonHandler creates a new pokemon handler.
func NewPokemonHandler(deps PokemonDependencies) *PokemonHandler {
	return &PokemonHandler{deps: deps}
}

// HandleEntity handles GET /pokemon/{id}.
func (h *PokemonHandler) HandleEntity(w http.ResponseWriter, r *http.Request) {
	e, err := h.deps.Entity(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandlePerformance handles GET /pokemon/{id}/performance?defender=a,b.
func (h *PokemonHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	defenders, err := parseTypeList(r.URL.Query().Get("defender"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	perf, err := h.deps.Performance(r.Context(), r.PathValue("id"), defenders)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

// HandleFamily handles GET /families/{id}.
func (h *PokemonHandler) HandleFamily(w http.ResponseWriter, r *http.Request) {
	resp, err := h.deps.Family(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleFamilies handles GET /families.
func (h *PokemonHandler) HandleFamilies(w http.ResponseWriter, r *http.Request) {
	fs, err := h.deps.Families(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(fs), "families": fs})
}
