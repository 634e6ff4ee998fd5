package testutil

import (
	"context"
	"sync"

	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage"
)

// Operations that FaultyStorage can be told to fail
const (
	OpGetPlayer   = "GetPlayer"
	OpSavePlayer  = "SavePlayer"
	OpTopPlayers  = "TopPlayers"
	OpInsertGame  = "InsertGame"
	OpGetGame     = "GetGame"
	OpCountGames  = "CountGames"
	OpGameAt      = "GameAt"
	OpRecentGames = "RecentGameSummaries"
)

// FaultyStorage wraps a Storage and fails selected operations.
// SavePlayer can also be failed for a single identity token.
type FaultyStorage struct {
	storage.Storage

	mu          sync.Mutex
	failures    map[string]error
	playerSaves map[string]error
	calls       map[string]int
}

var _ storage.Storage = (*FaultyStorage)(nil)

// NewFaultyStorage wraps inner
func NewFaultyStorage(inner storage.Storage) *FaultyStorage {
	return &FaultyStorage{
		Storage:     inner,
		failures:    make(map[string]error),
		playerSaves: make(map[string]error),
		calls:       make(map[string]int),
	}
}

// Fail makes every call to op return err
func (f *FaultyStorage) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// FailSavePlayer makes SavePlayer fail for one identity token only
func (f *FaultyStorage) FailSavePlayer(idToken string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playerSaves[idToken] = err
}

// Calls returns how many times op was invoked, failed or not
func (f *FaultyStorage) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyStorage) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.failures[op]
}

func (f *FaultyStorage) GetPlayer(ctx context.Context, idToken string) (*model.Player, error) {
	if err := f.check(OpGetPlayer); err != nil {
		return nil, err
	}
	return f.Storage.GetPlayer(ctx, idToken)
}

func (f *FaultyStorage) SavePlayer(ctx context.Context, player *model.Player) error {
	if err := f.check(OpSavePlayer); err != nil {
		return err
	}
	f.mu.Lock()
	err := f.playerSaves[player.IDToken]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Storage.SavePlayer(ctx, player)
}

func (f *FaultyStorage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if err := f.check(OpTopPlayers); err != nil {
		return nil, err
	}
	return f.Storage.TopPlayers(ctx, limit)
}

func (f *FaultyStorage) InsertGame(ctx context.Context, doc *model.GameDocument) (model.GameID, error) {
	if err := f.check(OpInsertGame); err != nil {
		return "", err
	}
	return f.Storage.InsertGame(ctx, doc)
}

func (f *FaultyStorage) GetGame(ctx context.Context, id model.GameID) (*model.GameDocument, error) {
	if err := f.check(OpGetGame); err != nil {
		return nil, err
	}
	return f.Storage.GetGame(ctx, id)
}

func (f *FaultyStorage) CountGames(ctx context.Context, minMoves int) (int, error) {
	if err := f.check(OpCountGames); err != nil {
		return 0, err
	}
	return f.Storage.CountGames(ctx, minMoves)
}

func (f *FaultyStorage) GameAt(ctx context.Context, minMoves int, offset int) (*model.GameDocument, error) {
	if err := f.check(OpGameAt); err != nil {
		return nil, err
	}
	return f.Storage.GameAt(ctx, minMoves, offset)
}

func (f *FaultyStorage) RecentGameSummaries(ctx context.Context, minMoves int, limit int) ([]model.GameSummary, error) {
	if err := f.check(OpRecentGames); err != nil {
		return nil, err
	}
	return f.Storage.RecentGameSummaries(ctx, minMoves, limit)
}
