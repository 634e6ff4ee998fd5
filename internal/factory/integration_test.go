package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wallwars-go/internal/availability"
	"github.com/mcoot/wallwars-go/internal/model"
	redisstorage "github.com/mcoot/wallwars-go/internal/storage/redis"
	"github.com/mcoot/wallwars-go/internal/storage/storagetest"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) finished(winner model.Winner, moves int, start time.Time) *model.FinishedGame {
	g := storagetest.Finished(moves, start)
	g.Winner = winner
	return g
}

// Test: games flow through to ratings, the ranking and the read side
func (s *IntegrationSuite) TestGameLifecycle() {
	start := s.app.MockClock.Now()

	id, ok := s.app.GameService.StoreGame(s.ctx, s.finished(model.WinnerCreator, 30, start))
	s.Require().True(ok)

	creator, ok := s.app.PlayerService.Get(s.ctx, "Auth0|creator")
	s.Require().True(ok)
	joiner, ok := s.app.PlayerService.Get(s.ctx, "Auth0|joiner")
	s.Require().True(ok)
	s.Greater(creator.Rating, joiner.Rating)
	s.Equal("Creator", creator.Name)
	s.Equal(1, creator.WinCount)
	s.Equal(0, joiner.WinCount)

	ranked, ok := s.app.PlayerService.Ranking(s.ctx, 10)
	s.Require().True(ok)
	s.Require().Len(ranked, 2)
	s.Equal("Creator", ranked[0].Name)

	g, ok := s.app.GameService.GetGame(s.ctx, id)
	s.Require().True(ok)
	s.Equal(id, g.ID)

	s.app.MockRandom.QueueIntn(0)
	random, ok := s.app.GameService.RandomGame(s.ctx)
	s.Require().True(ok)
	s.Equal(id, random.ID)

	recent, ok := s.app.GameService.RecentSummaries(s.ctx, 5)
	s.Require().True(ok)
	s.Require().Len(recent, 1)
	s.Equal(id, recent[0].ID)
}

// Test: a rematch reuses both stored records
func (s *IntegrationSuite) TestRematchAccumulates() {
	start := s.app.MockClock.Now()
	_, ok := s.app.GameService.StoreGame(s.ctx, s.finished(model.WinnerCreator, 10, start))
	s.Require().True(ok)
	_, ok = s.app.GameService.StoreGame(s.ctx, s.finished(model.WinnerDraw, 10, start.Add(time.Hour)))
	s.Require().True(ok)

	joiner, ok := s.app.PlayerService.Get(s.ctx, "Auth0|joiner")
	s.Require().True(ok)
	s.Equal(2, joiner.GameCount)
	s.Equal(1, joiner.DrawCount)
	s.True(joiner.FirstGameDate.Equal(start))
	s.True(joiner.LastGameDate.Equal(start.Add(time.Hour)))
}

// Test: while the store is down nothing is read or written
func (s *IntegrationSuite) TestStoreDownDegradesQuietly() {
	s.app.MockAvailability.SetAvailable(false)

	_, ok := s.app.GameService.StoreGame(s.ctx, s.finished(model.WinnerJoiner, 30, s.app.MockClock.Now()))
	s.False(ok)
	_, ok = s.app.PlayerService.Ranking(s.ctx, 10)
	s.False(ok)

	s.app.MockAvailability.SetAvailable(true)
	ranked, ok := s.app.PlayerService.Ranking(s.ctx, 10)
	s.Require().True(ok)
	s.Empty(ranked)
}

func (s *IntegrationSuite) TestCloseDrainsBackgroundStores() {
	s.app.GameService.StoreGameAsync(s.ctx, s.finished(model.WinnerCreator, 30, s.app.MockClock.Now()))

	s.Require().NoError(s.app.Close(s.ctx))

	n, err := s.app.MemoryStorage.CountGames(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(1, n)
}

// Factory wiring tests

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(t.Context(), Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	require.NoError(t, app.WaitForStore(t.Context()))
	assert.True(t, app.Availability.Available())
	assert.Equal(t, availability.StateReady, app.Availability.State())
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	app, err := New(t.Context(), Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	require.NoError(t, app.WaitForStore(t.Context()))
	assert.True(t, app.Availability.Available())

	_, ok := app.GameService.StoreGame(t.Context(), storagetest.Finished(25, storagetest.BaseTime))
	assert.True(t, ok)
	p, ok := app.PlayerService.Get(t.Context(), "Auth0|creator")
	require.True(t, ok)
	assert.Equal(t, 1, p.GameCount)
}

func TestNewWithUnreachableRedisFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + addr
	cfg.ConnectTimeout = time.Second

	app, err := New(t.Context(), Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err, "connection failures surface through availability, not New")

	assert.Error(t, app.WaitForStore(t.Context()))
	assert.False(t, app.Availability.Available())
	assert.Equal(t, availability.StateFailed, app.Availability.State())

	_, ok := app.PlayerService.Ranking(t.Context(), 10)
	assert.False(t, ok)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(t.Context(), Config{StorageType: "sqlite"})
	assert.Error(t, err)

	for _, typ := range []string{StorageTypeRedis, StorageTypeMongo, StorageTypePostgres} {
		_, err := New(t.Context(), Config{StorageType: typ})
		assert.Error(t, err, typ)
	}
}
