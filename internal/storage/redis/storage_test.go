package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wallwars-go/internal/storage"
	"github.com/mcoot/wallwars-go/internal/storage/storagetest"
)

func newMiniStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	s := NewWithClient(client, DefaultConfig())
	t.Cleanup(func() { _ = s.Close() })
	return s, mini
}

func TestConformance(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			s, _ := newMiniStorage(t)
			require.NoError(t, s.Connect(context.Background()))
			return s
		},
	})
}

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage, s.mini = newMiniStorage(s.T())
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSavePlayerMaintainsRatingIndex() {
	p := storagetest.Player("Auth0|alice", 1600)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, p))

	score, err := s.mini.ZScore(playerRatingIndexKey(), "Auth0|alice")
	s.Require().NoError(err)
	s.Equal(1600.0, score)

	p.Rating = 1580
	s.Require().NoError(s.storage.SavePlayer(s.ctx, p))

	score, err = s.mini.ZScore(playerRatingIndexKey(), "Auth0|alice")
	s.Require().NoError(err)
	s.Equal(1580.0, score)
}

func (s *StorageSuite) TestInsertGameWritesIndexes() {
	doc := storagetest.Game(7, storagetest.BaseTime)
	id, err := s.storage.InsertGame(s.ctx, doc)
	s.Require().NoError(err)

	s.True(s.mini.Exists(gameKey(id)))
	s.True(s.mini.Exists(gameSummaryKey(id)))

	moves, err := s.mini.ZScore(gameMovesIndexKey(), string(id))
	s.Require().NoError(err)
	s.Equal(7.0, moves)

	start, err := s.mini.ZScore(gameStartIndexKey(), string(id))
	s.Require().NoError(err)
	s.Equal(float64(storagetest.BaseTime.UnixMilli()), start)
}

func (s *StorageSuite) TestSummaryRecordOmitsMoveHistory() {
	id, err := s.storage.InsertGame(s.ctx, storagetest.Game(6, storagetest.BaseTime))
	s.Require().NoError(err)

	raw, err := s.mini.Get(gameSummaryKey(id))
	s.Require().NoError(err)
	s.NotContains(raw, "moveHistory")
	s.NotContains(raw, "idTokens")
	s.Contains(raw, `"moveCount":6`)
}

func (s *StorageSuite) TestRecentSummariesPagePastShortGames() {
	// enough short, newer games to fill more than one page
	for i := 0; i < summaryPageSize+5; i++ {
		_, err := s.storage.InsertGame(s.ctx, storagetest.Game(2, storagetest.BaseTime.AddDate(0, 0, 1)))
		s.Require().NoError(err)
	}
	id, err := s.storage.InsertGame(s.ctx, storagetest.Game(9, storagetest.BaseTime))
	s.Require().NoError(err)

	summaries, err := s.storage.RecentGameSummaries(s.ctx, 5, 10)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(id, summaries[0].ID)
}

func TestConnectFailsWhenServerDown(t *testing.T) {
	s, mini := newMiniStorage(t)
	mini.Close()

	err := s.Connect(context.Background())
	assert.Error(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{URL: "not a url"})
	assert.Error(t, err)
}
