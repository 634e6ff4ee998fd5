package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wallwars-go/internal/api/handler"
	"github.com/mcoot/wallwars-go/internal/api/middleware"
	"github.com/mcoot/wallwars-go/internal/availability"
	basemiddleware "github.com/mcoot/wallwars-go/internal/middleware"
	"github.com/mcoot/wallwars-go/internal/services/game"
	"github.com/mcoot/wallwars-go/internal/services/player"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	PlayerService *player.Service
	GameService   *game.Service
	Availability  availability.Checker
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.PlayerService)
	gameHandler := handler.NewGameHandler(cfg.GameService)
	healthHandler := handler.NewHealthHandler(cfg.Availability)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(basemiddleware.Logging(cfg.Logger))

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/ranking", playerHandler.Ranking).Methods(http.MethodGet)

	// The caller's own record needs an identity
	me := api.PathPrefix("/players/me").Subrouter()
	me.Use(middleware.Identity)
	me.HandleFunc("", playerHandler.GetMe).Methods(http.MethodGet)
	me.HandleFunc("/puzzles", playerHandler.SolvePuzzle).Methods(http.MethodPost)

	// Fixed paths are registered before {id}
	api.HandleFunc("/games", gameHandler.Store).Methods(http.MethodPost)
	api.HandleFunc("/games/random", gameHandler.Random).Methods(http.MethodGet)
	api.HandleFunc("/games/recent", gameHandler.Recent).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)

	return r
}
