package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/rating"
	"github.com/mcoot/wallwars-go/internal/services/player"
)

// updatePlayers applies a stored game's outcome to both players.
//
// It runs as a short saga after the game write: load both records, compute both
// ratings from the pre-game snapshot, then save each player on its own. No step is
// compensated; a failed save leaves that player stale until their next game.
// Loads and saves are plain read-modify-write, so two games finishing together for
// the same player can lose one of the updates.
func (s *Service) updatePlayers(ctx context.Context, id model.GameID, game *model.FinishedGame) {
	logger := s.logger.With(slog.String("game_id", string(id)))
	tokens := game.IDTokens

	if tokens[0] == "" || tokens[1] == "" {
		logger.Error("game is missing an identity token, skipping rating update")
		return
	}
	if model.IsGuest(tokens[0]) || model.IsGuest(tokens[1]) {
		logger.Debug("guest in game, skipping rating update")
		return
	}
	if tokens[0] == tokens[1] {
		logger.Warn("player faced themselves, skipping rating update")
		return
	}

	var records [2]*model.Player
	for i, token := range tokens {
		p, err := s.players.LoadOrCreate(ctx, token)
		if err != nil {
			logger.Error("rating update failed",
				slog.String("step", "load"),
				slog.Int("player_index", i),
				slog.String("error", err.Error()),
			)
			return
		}
		records[i] = p
	}

	// Both updates read the same snapshot so neither sees the other's new rating
	before := [2]rating.Triple{player.Triple(records[0]), player.Triple(records[1])}
	creatorScore, joinerScore := game.Winner.Scores()
	scores := [2]float64{creatorScore, joinerScore}

	for i := range records {
		updated := s.engine.Update(before[i], before[1-i], scores[i])
		player.RecordGame(records[i], updated, scores[i], game.PlayerNames[i], game.StartDate)
	}

	for i, p := range records {
		if err := s.players.Save(ctx, p); err != nil {
			logger.Error("rating update failed",
				slog.String("step", "save"),
				slog.Int("player_index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		logger.Debug("player rating updated",
			slog.Int("player_index", i),
			slog.Float64("rating", p.Rating),
		)
	}
}
