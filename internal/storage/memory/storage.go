package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	players map[string]*model.Player
	games   map[model.GameID]*model.GameDocument
	// insertion order, used for offset based sampling
	order []model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[string]*model.Player),
		games:   make(map[model.GameID]*model.GameDocument),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Connect(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, idToken string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[idToken]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.IDToken] = player.Clone()
	return nil
}

func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		all = append(all, p)
	}
	slices.SortFunc(all, func(a, b *model.Player) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.IDToken, b.IDToken)
	})

	if limit < len(all) {
		all = all[:max(limit, 0)]
	}
	out := make([]*model.Player, len(all))
	for i, p := range all {
		out[i] = p.Clone()
	}
	return out, nil
}

// Game operations

func (s *Storage) InsertGame(ctx context.Context, doc *model.GameDocument) (model.GameID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.GameID(uuid.NewString())
	stored := doc.Clone()
	stored.ID = string(id)
	s.games[id] = stored
	s.order = append(s.order, id)
	return id, nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return doc.Clone(), nil
}

func (s *Storage) CountGames(ctx context.Context, minMoves int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(minMoves)), nil
}

func (s *Storage) GameAt(ctx context.Context, minMoves int, offset int) (*model.GameDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.matching(minMoves)
	if offset < 0 || offset >= len(docs) {
		return nil, model.ErrGameNotFound
	}
	return docs[offset].Clone(), nil
}

func (s *Storage) RecentGameSummaries(ctx context.Context, minMoves int, limit int) ([]model.GameSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.matching(minMoves)
	slices.SortStableFunc(docs, func(a, b *model.GameDocument) int {
		return b.StartDate.Compare(a.StartDate)
	})
	if limit < len(docs) {
		docs = docs[:max(limit, 0)]
	}

	out := make([]model.GameSummary, len(docs))
	for i, d := range docs {
		out[i] = d.Summary()
	}
	return out, nil
}

// matching returns stored games with at least minMoves moves, in insertion order.
// Callers must hold the read lock.
func (s *Storage) matching(minMoves int) []*model.GameDocument {
	var docs []*model.GameDocument
	for _, id := range s.order {
		if d := s.games[id]; len(d.MoveHistory) >= minMoves {
			docs = append(docs, d)
		}
	}
	return docs
}
