// Package mongo stores players and games as MongoDB documents.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage"
)

const (
	playersCollection = "players"
	gamesCollection   = "games"
)

// Storage is a MongoDB-backed implementation of the storage interface
type Storage struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    Config
}

// gameRecord is a game document with its database identity
type gameRecord struct {
	ID                 primitive.ObjectID `bson:"_id"`
	model.GameDocument `bson:",inline"`
}

func (r *gameRecord) toDocument() *model.GameDocument {
	doc := r.GameDocument
	doc.ID = r.ID.Hex()
	return &doc
}

type summaryRecord struct {
	ID                primitive.ObjectID `bson:"_id"`
	model.GameSummary `bson:",inline"`
}

// summaryProjection leaves the move history and identity tokens on the server
var summaryProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "playerNames", Value: 1},
	{Key: "timeControl", Value: 1},
	{Key: "winner", Value: 1},
	{Key: "startDate", Value: 1},
	{Key: "ratings", Value: 1},
	{Key: "numMoves", Value: 1},
}

// New creates a MongoDB storage instance. The driver dials lazily; Connect verifies the server.
func New(cfg Config) (*Storage, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	return &Storage{
		client: client,
		db:     client.Database(cfg.Database),
		cfg:    cfg,
	}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Connect pings the server and ensures the query indexes exist
func (s *Storage) Connect(ctx context.Context) error {
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}

	if err := s.client.Ping(ctx, nil); err != nil {
		return err
	}

	_, err := s.players().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "idToken", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "rating", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create player indexes: %w", err)
	}
	_, err = s.games().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "startDate", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create game indexes: %w", err)
	}
	return nil
}

// Close disconnects the client
func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Storage) players() *mongo.Collection {
	return s.db.Collection(playersCollection)
}

func (s *Storage) games() *mongo.Collection {
	return s.db.Collection(gamesCollection)
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, idToken string) (*model.Player, error) {
	var p model.Player
	err := s.players().FindOne(ctx, bson.D{{Key: "idToken", Value: idToken}}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.players().ReplaceOne(ctx,
		bson.D{{Key: "idToken", Value: player.IDToken}},
		player,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Storage) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	if limit <= 0 {
		return []*model.Player{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "idToken", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := s.players().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	players := []*model.Player{}
	if err := cur.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// Game operations

func (s *Storage) InsertGame(ctx context.Context, doc *model.GameDocument) (model.GameID, error) {
	rec := gameRecord{ID: primitive.NewObjectID(), GameDocument: *doc}
	if _, err := s.games().InsertOne(ctx, rec); err != nil {
		return "", err
	}
	return model.GameID(rec.ID.Hex()), nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameDocument, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, model.ErrGameNotFound
	}

	var rec gameRecord
	if err := s.games().FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return rec.toDocument(), nil
}

func (s *Storage) CountGames(ctx context.Context, minMoves int) (int, error) {
	n, err := s.games().CountDocuments(ctx, minMovesFilter(minMoves))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) GameAt(ctx context.Context, minMoves int, offset int) (*model.GameDocument, error) {
	if offset < 0 {
		return nil, model.ErrGameNotFound
	}

	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset))

	var rec gameRecord
	if err := s.games().FindOne(ctx, minMovesFilter(minMoves), opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return rec.toDocument(), nil
}

func (s *Storage) RecentGameSummaries(ctx context.Context, minMoves int, limit int) ([]model.GameSummary, error) {
	out := []model.GameSummary{}
	if limit <= 0 {
		return out, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "startDate", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(summaryProjection)
	cur, err := s.games().Find(ctx, minMovesFilter(minMoves), opts)
	if err != nil {
		return nil, err
	}

	var recs []summaryRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	for _, r := range recs {
		sum := r.GameSummary
		sum.ID = model.GameID(r.ID.Hex())
		out = append(out, sum)
	}
	return out, nil
}

// minMovesFilter matches games whose move history has at least n entries
// by testing that index n-1 exists, which the server can answer without loading the array.
func minMovesFilter(n int) bson.D {
	if n <= 0 {
		return bson.D{}
	}
	return bson.D{{Key: fmt.Sprintf("moveHistory.%d", n-1), Value: bson.D{{Key: "$exists", Value: true}}}}
}
