// Package api serves ranking views and performance queries over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/raidtier/internal/adapters/repository"
	"github.com/okian/raidtier/internal/domain/battle"
	"github.com/okian/raidtier/internal/domain/family"
	"github.com/okian/raidtier/internal/domain/ranking"
	"github.com/okian/raidtier/internal/domain/typechart"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankingDependencies
	PokemonDependencies
}

// FamilyResponse is the body of GET /families/{id}.
type FamilyResponse struct {
	SpeciesID string             `json:"speciesId"`
	Info      family.Info        `json:"info"`
	Family    family.Family      `json:"family"`
	Stats     family.FamilyStats `json:"stats"`
	Chain     []string           `json:"chain"`
	Variants  []string           `json:"variants"`
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rankingsHandler *RankingsHandler
	pokemonHandler  *PokemonHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		rankingsHandler: NewRankingsHandler(deps),
		pokemonHandler:  NewPokemonHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /rankings/overall", MetricsMiddleware(s.rankingsHandler.HandleOverall, "rankings_overall"))
	mux.HandleFunc("GET /rankings/type/{type}", MetricsMiddleware(s.rankingsHandler.HandleByType, "rankings_type"))
	mux.HandleFunc("GET /rankings/counters/{type}", MetricsMiddleware(s.rankingsHandler.HandleCounters, "rankings_counters"))
	mux.HandleFunc("GET /rankings/pvp", MetricsMiddleware(s.rankingsHandler.HandlePVP, "rankings_pvp"))
	mux.HandleFunc("GET /types/{type}", MetricsMiddleware(s.rankingsHandler.HandleMatchup, "types"))

	mux.HandleFunc("GET /pokemon/{id}", MetricsMiddleware(s.pokemonHandler.HandleEntity, "pokemon"))
	mux.HandleFunc("GET /pokemon/{id}/performance", MetricsMiddleware(s.pokemonHandler.HandlePerformance, "performance"))
	mux.HandleFunc("GET /families", MetricsMiddleware(s.pokemonHandler.HandleFamilies, "families_list"))
	mux.HandleFunc("GET /families/{id}", MetricsMiddleware(s.pokemonHandler.HandleFamily, "families"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates domain errors into HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, typechart.ErrUnknownType),
		errors.Is(err, battle.ErrValidation),
		errors.Is(err, ranking.ErrNoDefenders),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, ranking.ErrUnknownEntity):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrNoDataset):
		writeError(w, http.StatusServiceUnavailable, "no_dataset", err)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, ranking.ErrEmptyPopulation),
		errors.Is(err, battle.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
