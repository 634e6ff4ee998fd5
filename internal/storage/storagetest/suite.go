package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wallwars-go/internal/model"
	"github.com/mcoot/wallwars-go/internal/storage"
)

// Suite is the behaviour every storage backend must share.
// NewStorage returns an empty, connected store and registers its teardown with t.Cleanup.
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	store storage.Storage
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStorage(s.T())
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	p := Player("Auth0|alice", 1600)
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	got, err := s.store.GetPlayer(s.ctx, "Auth0|alice")
	s.Require().NoError(err)
	s.Equal(p, got)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.store.GetPlayer(s.ctx, "Auth0|nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerReplaces() {
	p := Player("Auth0|alice", 1600)
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	p.Rating = 1650
	p.PeakRating = 1650
	p.SolvedPuzzles = append(p.SolvedPuzzles, "puzzle-2")
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	got, err := s.store.GetPlayer(s.ctx, "Auth0|alice")
	s.Require().NoError(err)
	s.Equal(1650.0, got.Rating)
	s.Equal([]string{"puzzle-1", "puzzle-2"}, got.SolvedPuzzles)

	top, err := s.store.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(top, 1)
}

func (s *Suite) TestPlayerWithoutGamesKeepsAbsentDates() {
	p := &model.Player{IDToken: "Auth0|fresh", Rating: 1500, PeakRating: 1500}
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	got, err := s.store.GetPlayer(s.ctx, "Auth0|fresh")
	s.Require().NoError(err)
	s.Nil(got.FirstGameDate)
	s.Nil(got.LastGameDate)
}

func (s *Suite) TestTopPlayersOrderedByRating() {
	for i, r := range []float64{1400, 1800, 1500, 1700} {
		p := Player("Auth0|p"+string(rune('a'+i)), r)
		s.Require().NoError(s.store.SavePlayer(s.ctx, p))
	}

	top, err := s.store.TopPlayers(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal(1800.0, top[0].Rating)
	s.Equal(1700.0, top[1].Rating)
	s.Equal(1500.0, top[2].Rating)

	all, err := s.store.TopPlayers(s.ctx, 50)
	s.Require().NoError(err)
	s.Len(all, 4)
}

func (s *Suite) TestTopPlayersEmpty() {
	top, err := s.store.TopPlayers(s.ctx, 5)
	s.Require().NoError(err)
	s.Empty(top)
}

// Game tests

func (s *Suite) TestInsertAndGetGame() {
	doc := Game(3, BaseTime)

	id, err := s.store.InsertGame(s.ctx, doc)
	s.Require().NoError(err)
	s.NotEmpty(id)

	got, err := s.store.GetGame(s.ctx, id)
	s.Require().NoError(err)

	want := doc.Clone()
	want.ID = string(id)
	s.Equal(want, got)
}

func (s *Suite) TestInsertGameAssignsDistinctIDs() {
	a, err := s.store.InsertGame(s.ctx, Game(2, BaseTime))
	s.Require().NoError(err)
	b, err := s.store.InsertGame(s.ctx, Game(2, BaseTime))
	s.Require().NoError(err)
	s.NotEqual(a, b)
}

func (s *Suite) TestInsertGameCopiesInput() {
	doc := Game(2, BaseTime)
	id, err := s.store.InsertGame(s.ctx, doc)
	s.Require().NoError(err)

	doc.PlayerNames[0] = "Mallory"
	doc.MoveHistory[0].Actions[0][0] = 42

	got, err := s.store.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Creator", got.PlayerNames[0])
	s.Equal(0, got.MoveHistory[0].Actions[0][0])
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.store.GetGame(s.ctx, "65f1c0ffee0000000000beef")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.store.GetGame(s.ctx, "not-an-id")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestCountGamesByMoveThreshold() {
	for _, moves := range []int{2, 5, 20, 21, 30} {
		_, err := s.store.InsertGame(s.ctx, Game(moves, BaseTime))
		s.Require().NoError(err)
	}

	n, err := s.store.CountGames(s.ctx, 21)
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.store.CountGames(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal(4, n)
}

func (s *Suite) TestGameAtVisitsEveryQualifyingGame() {
	want := map[model.GameID]bool{}
	for _, moves := range []int{21, 3, 25, 40} {
		id, err := s.store.InsertGame(s.ctx, Game(moves, BaseTime))
		s.Require().NoError(err)
		if moves >= 21 {
			want[id] = true
		}
	}

	n, err := s.store.CountGames(s.ctx, 21)
	s.Require().NoError(err)
	s.Require().Equal(3, n)

	seen := map[model.GameID]bool{}
	for offset := range n {
		doc, err := s.store.GameAt(s.ctx, 21, offset)
		s.Require().NoError(err)
		s.GreaterOrEqual(len(doc.MoveHistory), 21)
		seen[model.GameID(doc.ID)] = true
	}
	s.Equal(want, seen)

	_, err = s.store.GameAt(s.ctx, 21, n)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGameAtEmpty() {
	_, err := s.store.GameAt(s.ctx, 21, 0)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestRecentGameSummaries() {
	ids := map[int]model.GameID{}
	for day, moves := range []int{5, 4, 8, 6} {
		id, err := s.store.InsertGame(s.ctx, Game(moves, BaseTime.Add(time.Duration(day)*24*time.Hour)))
		s.Require().NoError(err)
		ids[day] = id
	}

	summaries, err := s.store.RecentGameSummaries(s.ctx, 5, 2)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)

	s.Equal(ids[3], summaries[0].ID)
	s.Equal(6, summaries[0].NumMoves)
	s.True(summaries[0].StartDate.Equal(BaseTime.Add(72 * time.Hour)))
	s.Equal(ids[2], summaries[1].ID)

	s.Equal([]string{"Creator", "Joiner"}, summaries[0].PlayerNames)
	s.Equal(model.WinnerCreator, summaries[0].Winner)
	s.Equal(model.TimeControl{Duration: 5, Increment: 2}, summaries[0].TimeControl)
	s.Equal([]float64{1500, 1520.5}, summaries[0].Ratings)

	all, err := s.store.RecentGameSummaries(s.ctx, 5, 10)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *Suite) TestRecentGameSummariesEmpty() {
	summaries, err := s.store.RecentGameSummaries(s.ctx, 5, 10)
	s.Require().NoError(err)
	s.Empty(summaries)
}
