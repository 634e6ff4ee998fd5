package storage

import (
	"context"

	"github.com/mcoot/wallwars-go/internal/model"
)

// Storage defines the interface for data persistence.
//
// Backends report a missing record with model.ErrPlayerNotFound or model.ErrGameNotFound.
// Every read returns values the caller may mutate freely.
type Storage interface {
	// Connect verifies the backend is reachable and prepares indexes or tables
	Connect(ctx context.Context) error
	Close() error

	// Player operations
	GetPlayer(ctx context.Context, idToken string) (*model.Player, error)
	// SavePlayer inserts or replaces the record keyed by its idToken
	SavePlayer(ctx context.Context, player *model.Player) error
	// TopPlayers returns up to limit players ordered by rating descending
	TopPlayers(ctx context.Context, limit int) ([]*model.Player, error)

	// Game operations
	// InsertGame stores a new game document and returns the identity assigned to it
	InsertGame(ctx context.Context, doc *model.GameDocument) (model.GameID, error)
	GetGame(ctx context.Context, id model.GameID) (*model.GameDocument, error)
	// CountGames counts games with at least minMoves recorded moves
	CountGames(ctx context.Context, minMoves int) (int, error)
	// GameAt returns the game at offset among those CountGames counted
	GameAt(ctx context.Context, minMoves int, offset int) (*model.GameDocument, error)
	// RecentGameSummaries returns up to limit summaries of games with at least minMoves
	// recorded moves, newest startDate first
	RecentGameSummaries(ctx context.Context, minMoves int, limit int) ([]model.GameSummary, error)
}
