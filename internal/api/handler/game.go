package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wallwars-go/internal/api/response"
	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/services/game"
)

// maxGameBody bounds an ingested game document
const maxGameBody = 4 << 20

// GameHandler handles finished-game endpoints
type GameHandler struct {
	games *game.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *game.Service) *GameHandler {
	return &GameHandler{
		games: games,
	}
}

// Store handles POST /api/v1/games
func (h *GameHandler) Store(w http.ResponseWriter, r *http.Request) {
	var doc model.GameDocument
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGameBody)).Decode(&doc); err != nil {
		WriteError(w, NewInvalidRequestError("invalid game document"))
		return
	}
	// Ids are assigned by the store
	doc.ID = ""

	id, err := h.games.StoreDocument(r.Context(), &doc)
	switch {
	case err == nil:
		response.JSON(w, http.StatusAccepted, response.GameStored{ID: id})
	case errors.Is(err, game.ErrNotStored):
		response.NoContent(w)
	default:
		WriteError(w, err)
	}
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	g, ok := h.games.GetGame(r.Context(), id)
	if !ok {
		WriteError(w, model.ErrGameNotFound)
		return
	}

	response.JSON(w, http.StatusOK, g)
}

// Random handles GET /api/v1/games/random
func (h *GameHandler) Random(w http.ResponseWriter, r *http.Request) {
	g, ok := h.games.RandomGame(r.Context())
	if !ok {
		WriteError(w, NewNoResultError("No game available"))
		return
	}

	response.JSON(w, http.StatusOK, g)
}

// Recent handles GET /api/v1/games/recent
func (h *GameHandler) Recent(w http.ResponseWriter, r *http.Request) {
	count, err := countParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	summaries, ok := h.games.RecentSummaries(r.Context(), count)
	if !ok {
		WriteError(w, NewNoResultError("Recent games unavailable"))
		return
	}
	if summaries == nil {
		summaries = []model.GameSummary{}
	}

	response.JSON(w, http.StatusOK, summaries)
}
