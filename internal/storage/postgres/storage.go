// Package postgres stores players and games as JSONB documents in PostgreSQL.
// Only the columns the queries filter or sort on are broken out of the document.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS players (
	id_token TEXT PRIMARY KEY,
	rating   DOUBLE PRECISION NOT NULL,
	doc      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS players_rating_idx ON players (rating DESC);

CREATE TABLE IF NOT EXISTS games (
	id         UUID PRIMARY KEY,
	seq        BIGSERIAL,
	start_date TIMESTAMPTZ NOT NULL,
	move_count INTEGER NOT NULL,
	doc        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS games_move_count_idx ON games (move_count);
CREATE INDEX IF NOT EXISTS games_start_date_idx ON games (start_date DESC);
`

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
	cfg  Config
}

// New creates a pool. Connections are opened lazily; Connect verifies the server and applies the schema.
func New(cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, err
	}
	return &Storage{pool: pool, cfg: cfg}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Connect(ctx context.Context) error {
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}

	if err := s.pool.Ping(ctx); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, idToken string) (*model.Player, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM players WHERE id_token = $1`, idToken).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var p model.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO players (id_token, rating, doc) VALUES ($1, $2, $3)
		ON CONFLICT (id_token) DO UPDATE SET rating = EXCLUDED.rating, doc = EXCLUDED.doc`,
		player.IDToken, player.Rating, data)
	return err
}

func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if limit <= 0 {
		return []*model.Player{}, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT doc FROM players ORDER BY rating DESC, id_token LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p model.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode player: %w", err)
		}
		players = append(players, &p)
	}
	return players, rows.Err()
}

// Game operations

func (s *Storage) InsertGame(ctx context.Context, doc *model.GameDocument) (model.GameID, error) {
	id := uuid.New()

	stored := *doc
	stored.ID = id.String()
	data, err := json.Marshal(&stored)
	if err != nil {
		return "", err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO games (id, start_date, move_count, doc) VALUES ($1, $2, $3, $4)`,
		id.String(), stored.StartDate, len(stored.MoveHistory), data)
	if err != nil {
		return "", err
	}
	return model.GameID(stored.ID), nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameDocument, error) {
	if _, err := uuid.Parse(string(id)); err != nil {
		return nil, model.ErrGameNotFound
	}
	return s.queryGame(ctx, `SELECT doc FROM games WHERE id = $1`, string(id))
}

func (s *Storage) CountGames(ctx context.Context, minMoves int) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM games WHERE move_count >= $1`, minMoves).Scan(&n)
	return n, err
}

func (s *Storage) GameAt(ctx context.Context, minMoves int, offset int) (*model.GameDocument, error) {
	if offset < 0 {
		return nil, model.ErrGameNotFound
	}
	return s.queryGame(ctx,
		`SELECT doc FROM games WHERE move_count >= $1 ORDER BY seq OFFSET $2 LIMIT 1`,
		minMoves, offset)
}

func (s *Storage) RecentGameSummaries(ctx context.Context, minMoves int, limit int) ([]model.GameSummary, error) {
	out := []model.GameSummary{}
	if limit <= 0 {
		return out, nil
	}

	// The move history never leaves the database
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, doc - 'moveHistory' - 'idTokens'
		FROM games WHERE move_count >= $1
		ORDER BY start_date DESC LIMIT $2`,
		minMoves, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var sum model.GameSummary
		if err := json.Unmarshal(data, &sum); err != nil {
			return nil, fmt.Errorf("decode game summary: %w", err)
		}
		sum.ID = model.GameID(id)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Storage) queryGame(ctx context.Context, sql string, args ...any) (*model.GameDocument, error) {
	var data []byte
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
