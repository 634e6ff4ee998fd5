package player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/wallwars-go/internal/availability"
	"github.com/mcoot/wallwars-go/internal/dependencies/clock"
	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/rating"
	"github.com/mcoot/wallwars-go/internal/storage"
	"github.com/mcoot/wallwars-go/internal/validation"
)

// Service owns player records: lookup, ranking and puzzle progress.
// Storage failures are logged and absorbed; callers only ever see "no result".
type Service struct {
	storage storage.Storage
	avail   availability.Checker
	engine  rating.Engine
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new player Service
func New(
	storage storage.Storage,
	avail availability.Checker,
	engine rating.Engine,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		avail:   avail,
		engine:  engine,
		clock:   clock,
		logger:  logger,
	}
}

// Get looks up a player by identity token
func (s *Service) Get(ctx context.Context, idToken string) (*model.Player, bool) {
	if !s.avail.Available() {
		return nil, false
	}

	p, err := s.storage.GetPlayer(ctx, idToken)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			s.logger.Error("failed to load player", slog.String("error", err.Error()))
		}
		return nil, false
	}
	return p, true
}

// Ranking returns up to count players by rating, highest first, without identity tokens
func (s *Service) Ranking(ctx context.Context, count int) ([]model.RankedPlayer, bool) {
	if count < 1 || !s.avail.Available() {
		return nil, false
	}

	players, err := s.storage.TopPlayers(ctx, count)
	if err != nil {
		s.logger.Error("failed to load ranking",
			slog.Int("count", count),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	ranked := make([]model.RankedPlayer, len(players))
	for i, p := range players {
		ranked[i] = p.Ranked()
	}
	return ranked, true
}

// CreateNew builds a fresh record at the initial rating. Nothing is persisted.
func (s *Service) CreateNew(idToken string) *model.Player {
	t := s.engine.Initial()
	return &model.Player{
		IDToken:          idToken,
		Rating:           t.Rating,
		PeakRating:       t.Rating,
		RatingDeviation:  t.Deviation,
		RatingVolatility: t.Volatility,
		SolvedPuzzles:    []string{},
	}
}

// AddSolvedPuzzle marks a puzzle as solved, creating the player if needed.
// Guests, an unavailable store and already solved puzzles are no-ops.
func (s *Service) AddSolvedPuzzle(ctx context.Context, idToken, name, puzzleID string) {
	if model.IsGuest(idToken) {
		s.logger.Debug("not recording puzzle for guest", slog.String("puzzle_id", puzzleID))
		return
	}
	if !s.avail.Available() {
		return
	}

	p, err := s.LoadOrCreate(ctx, idToken)
	if err != nil {
		s.logger.Error("failed to load player for puzzle",
			slog.String("puzzle_id", puzzleID),
			slog.String("error", err.Error()),
		)
		return
	}

	if p.FirstGameDate == nil {
		// A stored record always carries both dates
		now := s.clock.Now()
		p.Name = name
		p.FirstGameDate = &now
		last := now
		p.LastGameDate = &last
	} else if p.HasSolved(puzzleID) {
		return
	}

	p.SolvedPuzzles = append(p.SolvedPuzzles, puzzleID)
	if err := s.Save(ctx, p); err != nil {
		s.logger.Error("failed to record solved puzzle",
			slog.String("puzzle_id", puzzleID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("puzzle solved",
		slog.String("puzzle_id", puzzleID),
		slog.Int("solved_count", len(p.SolvedPuzzles)),
	)
}

// LoadOrCreate returns the stored player, or a fresh unsaved record when none exists
func (s *Service) LoadOrCreate(ctx context.Context, idToken string) (*model.Player, error) {
	p, err := s.storage.GetPlayer(ctx, idToken)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return s.CreateNew(idToken), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Save validates and persists a player record
func (s *Service) Save(ctx context.Context, p *model.Player) error {
	if err := validation.ValidatePlayer(p).Err(); err != nil {
		return err
	}
	return s.storage.SavePlayer(ctx, p)
}

// Triple returns the player's current rating parameters
func Triple(p *model.Player) rating.Triple {
	return rating.Triple{
		Rating:     p.Rating,
		Deviation:  p.RatingDeviation,
		Volatility: p.RatingVolatility,
	}
}

// RecordGame applies one game's outcome to a player record.
// score is 1 for a win, 0.5 for a draw and 0 for a loss.
func RecordGame(p *model.Player, updated rating.Triple, score float64, name string, date time.Time) {
	p.Name = name
	p.Rating = updated.Rating
	p.RatingDeviation = updated.Deviation
	p.RatingVolatility = updated.Volatility
	p.PeakRating = max(p.PeakRating, updated.Rating)

	p.GameCount++
	switch score {
	case 1:
		p.WinCount++
	case 0.5:
		p.DrawCount++
	}

	if p.FirstGameDate == nil {
		first := date
		p.FirstGameDate = &first
	}
	last := date
	p.LastGameDate = &last
}
