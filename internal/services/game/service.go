package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/wallwars-go/internal/availability"
	"github.com/mcoot/wallwars-go/internal/dependencies/random"
	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/rating"
	"github.com/mcoot/wallwars-go/internal/services/player"
	"github.com/mcoot/wallwars-go/internal/storage"
	"github.com/mcoot/wallwars-go/internal/validation"
)

// Move count thresholds
const (
	// MinStoredMoves is the shortest game worth recording; shorter games count as aborted
	MinStoredMoves = 2
	// RandomGameMinMoves is the length of a "substantial" game eligible for random sampling
	RandomGameMinMoves = 21
	// SummaryMinMoves is the shortest game listed in recent summaries
	SummaryMinMoves = 5
)

// ErrNotStored is returned when a game was dropped or could not be written.
// It never reaches gameplay code; only the ingest endpoint inspects it.
var ErrNotStored = errors.New("game not stored")

// Service records finished games and keeps both players' ratings in step with them
type Service struct {
	storage storage.Storage
	avail   availability.Checker
	players *player.Service
	engine  rating.Engine
	random  random.Random
	logger  *slog.Logger

	inflight sync.WaitGroup
}

// New creates a new game Service
func New(
	storage storage.Storage,
	avail availability.Checker,
	players *player.Service,
	engine rating.Engine,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		avail:   avail,
		players: players,
		engine:  engine,
		random:  random,
		logger:  logger,
	}
}

// StoreGame records a finished game and updates both players' ratings.
// Every failure is logged and absorbed; ok is false when nothing was stored.
func (s *Service) StoreGame(ctx context.Context, game *model.FinishedGame) (model.GameID, bool) {
	id, err := s.StoreDocument(ctx, game.ToDocument())
	if err != nil {
		return "", false
	}
	return id, true
}

// StoreGameAsync runs StoreGame in the background so the caller never waits on storage.
// It is the entry point for the game engine when a game ends; the HTTP ingest
// endpoint uses StoreDocument instead because it reports the outcome.
// The store outlives ctx cancellation; Drain waits for it.
func (s *Service) StoreGameAsync(ctx context.Context, game *model.FinishedGame) {
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.StoreGame(ctx, game)
	}()
}

// Drain blocks until every background store has finished or ctx is done
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StoreDocument records a game given in its persisted shape.
// It returns a *validation.Error when the document is malformed and ErrNotStored
// when the game was dropped or the write failed.
func (s *Service) StoreDocument(ctx context.Context, doc *model.GameDocument) (model.GameID, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: no document", ErrNotStored)
	}
	if !s.avail.Available() {
		s.logger.Debug("store unavailable, dropping game")
		return "", fmt.Errorf("%w: store unavailable", ErrNotStored)
	}
	if n := len(doc.MoveHistory); n < MinStoredMoves {
		s.logger.Debug("dropping short game", slog.Int("moves", n))
		return "", fmt.Errorf("%w: %d moves recorded", ErrNotStored, n)
	}

	if err := validation.ValidateGame(doc).Err(); err != nil {
		s.logger.Error("rejected invalid game document", slog.String("error", err.Error()))
		return "", err
	}

	id, err := s.storage.InsertGame(ctx, doc)
	if err != nil {
		s.logger.Error("failed to store game", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %w", ErrNotStored, err)
	}

	s.logger.Info("game stored",
		slog.String("game_id", string(id)),
		slog.Int("moves", len(doc.MoveHistory)),
		slog.String("winner", doc.Winner),
	)

	// A validated document always converts
	game, err := doc.ToFinishedGame()
	if err != nil {
		s.logger.Error("stored game could not be read back", slog.String("game_id", string(id)), slog.String("error", err.Error()))
		return id, nil
	}
	s.updatePlayers(ctx, id, game)

	return id, nil
}

// GetGame looks up a stored game. Identity tokens are never part of the result.
func (s *Service) GetGame(ctx context.Context, id model.GameID) (*model.PublicGame, bool) {
	if !s.avail.Available() {
		return nil, false
	}

	doc, err := s.storage.GetGame(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrGameNotFound) {
			s.logger.Error("failed to load game", slog.String("game_id", string(id)), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return s.toPublic(doc)
}

// RandomGame picks uniformly among games with at least RandomGameMinMoves moves.
// Sampling skips to a random offset, which costs O(count) on most backends.
func (s *Service) RandomGame(ctx context.Context) (*model.PublicGame, bool) {
	if !s.avail.Available() {
		return nil, false
	}

	count, err := s.storage.CountGames(ctx, RandomGameMinMoves)
	if err != nil {
		s.logger.Error("failed to count games", slog.String("error", err.Error()))
		return nil, false
	}
	if count == 0 {
		return nil, false
	}

	offset := s.random.Intn(count)
	doc, err := s.storage.GameAt(ctx, RandomGameMinMoves, offset)
	if err != nil {
		// The collection can shrink between count and fetch only through external deletes
		if !errors.Is(err, model.ErrGameNotFound) {
			s.logger.Error("failed to load random game", slog.Int("offset", offset), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return s.toPublic(doc)
}

// RecentSummaries lists up to count games with at least SummaryMinMoves moves, newest first
func (s *Service) RecentSummaries(ctx context.Context, count int) ([]model.GameSummary, bool) {
	if count < 1 || !s.avail.Available() {
		return nil, false
	}

	summaries, err := s.storage.RecentGameSummaries(ctx, SummaryMinMoves, count)
	if err != nil {
		s.logger.Error("failed to load game summaries", slog.Int("count", count), slog.String("error", err.Error()))
		return nil, false
	}
	return summaries, true
}

func (s *Service) toPublic(doc *model.GameDocument) (*model.PublicGame, bool) {
	g, err := doc.ToPublicGame()
	if err != nil {
		s.logger.Error("stored game is malformed", slog.String("game_id", doc.ID), slog.String("error", err.Error()))
		return nil, false
	}
	return g, true
}
