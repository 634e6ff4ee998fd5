package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/wallwars-go/internal/api/middleware"
	"github.com/mcoot/wallwars-go/internal/api/request"
	"github.com/mcoot/wallwars-go/internal/api/response"
	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/services/player"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	players *player.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players *player.Service) *PlayerHandler {
	return &PlayerHandler{
		players: players,
	}
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	idToken := middleware.MustGetIDToken(r.Context())

	p, ok := h.players.Get(r.Context(), idToken)
	if !ok {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	response.JSON(w, http.StatusOK, p)
}

// SolvePuzzle handles POST /api/v1/players/me/puzzles
func (h *PlayerHandler) SolvePuzzle(w http.ResponseWriter, r *http.Request) {
	var req request.SolvePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.PuzzleID == "" {
		WriteError(w, NewInvalidRequestError("puzzle_id is required"))
		return
	}

	// Recording is best effort; the caller is never told whether it stuck
	h.players.AddSolvedPuzzle(r.Context(), middleware.MustGetIDToken(r.Context()), req.Name, req.PuzzleID)
	response.NoContent(w)
}

// Ranking handles GET /api/v1/ranking
func (h *PlayerHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	count, err := countParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	ranked, ok := h.players.Ranking(r.Context(), count)
	if !ok {
		WriteError(w, NewNoResultError("Ranking unavailable"))
		return
	}

	response.JSON(w, http.StatusOK, ranked)
}
