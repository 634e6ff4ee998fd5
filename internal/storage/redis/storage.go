package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage"
)

// summaryPageSize is how many ids are scanned per round trip when listing recent games
const summaryPageSize = 100

// Storage is a Redis-backed implementation of the storage interface.
// Documents are stored as JSON strings; sorted sets provide the rating, move count
// and start date orderings the queries need.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// summaryRecord is stored next to each game so listings never load the move history
type summaryRecord struct {
	Summary   model.GameSummary `json:"summary"`
	MoveCount int               `json:"moveCount"`
}

// New creates a Redis storage instance. The connection is verified by Connect.
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	return &Storage{
		client: redis.NewClient(opts),
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Connect pings the server
func (s *Storage) Connect(ctx context.Context) error {
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, idToken string) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(idToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Document and rating index change together
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(player.IDToken), data, 0)
		pipe.ZAdd(ctx, playerRatingIndexKey(), redis.Z{Score: player.Rating, Member: player.IDToken})
		return nil
	})
	return err
}

func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if limit <= 0 {
		return []*model.Player{}, nil
	}

	ids, err := s.client.ZRevRange(ctx, playerRatingIndexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var p model.Player
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, fmt.Errorf("decode player: %w", err)
		}
		players = append(players, &p)
	}
	return players, nil
}

// Game operations

func (s *Storage) InsertGame(ctx context.Context, doc *model.GameDocument) (model.GameID, error) {
	id := model.GameID(uuid.NewString())

	stored := *doc
	stored.ID = string(id)
	data, err := json.Marshal(&stored)
	if err != nil {
		return "", err
	}
	summary, err := json.Marshal(summaryRecord{Summary: stored.Summary(), MoveCount: len(stored.MoveHistory)})
	if err != nil {
		return "", err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(id), data, 0)
		pipe.Set(ctx, gameSummaryKey(id), summary, 0)
		pipe.ZAdd(ctx, gameMovesIndexKey(), redis.Z{Score: float64(len(stored.MoveHistory)), Member: string(id)})
		pipe.ZAdd(ctx, gameStartIndexKey(), redis.Z{Score: float64(stored.StartDate.UnixMilli()), Member: string(id)})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameDocument, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var doc model.GameDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Storage) CountGames(ctx context.Context, minMoves int) (int, error) {
	n, err := s.client.ZCount(ctx, gameMovesIndexKey(), strconv.Itoa(minMoves), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) GameAt(ctx context.Context, minMoves int, offset int) (*model.GameDocument, error) {
	if offset < 0 {
		return nil, model.ErrGameNotFound
	}

	ids, err := s.client.ZRangeByScore(ctx, gameMovesIndexKey(), &redis.ZRangeBy{
		Min:    strconv.Itoa(minMoves),
		Max:    "+inf",
		Offset: int64(offset),
		Count:  1,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, model.ErrGameNotFound
	}
	return s.GetGame(ctx, model.GameID(ids[0]))
}

func (s *Storage) RecentGameSummaries(ctx context.Context, minMoves int, limit int) ([]model.GameSummary, error) {
	out := []model.GameSummary{}
	if limit <= 0 {
		return out, nil
	}

	for start := int64(0); len(out) < limit; start += summaryPageSize {
		ids, err := s.client.ZRevRange(ctx, gameStartIndexKey(), start, start+summaryPageSize-1).Result()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			break
		}

		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = gameSummaryKey(model.GameID(id))
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, err
		}

		for _, val := range values {
			str, ok := val.(string)
			if !ok {
				continue
			}
			var rec summaryRecord
			if err := json.Unmarshal([]byte(str), &rec); err != nil {
				return nil, fmt.Errorf("decode game summary: %w", err)
			}
			if rec.MoveCount < minMoves {
				continue
			}
			out = append(out, rec.Summary)
			if len(out) == limit {
				break
			}
		}

		if len(ids) < summaryPageSize {
			break
		}
	}
	return out, nil
}
