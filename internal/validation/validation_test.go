package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wallwars-go/internal/model"
)

type GameValidationTestSuite struct {
	suite.Suite
	doc *model.GameDocument
}

func TestGameValidationTestSuite(t *testing.T) {
	suite.Run(t, new(GameValidationTestSuite))
}

func (s *GameValidationTestSuite) SetupTest() {
	s.doc = &model.GameDocument{
		SocketIDs:   []string{"s1", "s2"},
		JoinCode:    "ABCD",
		TimeControl: model.TimeControl{Duration: 5, Increment: 2},
		BoardSettings: model.BoardSettingsDocument{
			Dims:     []int{9, 11},
			StartPos: [][]int{{0, 0}, {0, 10}},
			GoalPos:  [][]int{{8, 10}, {8, 0}},
		},
		PlayerNames:  []string{"Alice", "Bob"},
		IDTokens:     []string{"Auth0|a", "Auth0|b"},
		PlayerTokens: []string{"pt1", "pt2"},
		MatchScore:   []int{1, 0},
		Winner:       "creator",
		FinishReason: "goal",
		MoveHistory: []model.MoveDocument{
			{Actions: [][]int{{0, 2}}, RemainingTime: 290, Timestamp: "t1"},
			{Actions: [][]int{{1, 10}, {2, 10}}, RemainingTime: 295, Timestamp: "t2"},
		},
		StartDate:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		NumMoves:   2,
		FinalDists: []int{0, 7},
		Version:    "1.0",
		Ratings:    []float64{1500, 1600},
	}
}

func (s *GameValidationTestSuite) fields(r Result) []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Field
	}
	return out
}

func (s *GameValidationTestSuite) TestValidDocument() {
	r := ValidateGame(s.doc)
	s.True(r.Valid())
	s.NoError(r.Err())
}

func (s *GameValidationTestSuite) TestNilDocument() {
	r := ValidateGame(nil)
	s.False(r.Valid())
}

func (s *GameValidationTestSuite) TestSingleEntryMatchScoreRejected() {
	s.doc.MatchScore = []int{1}

	r := ValidateGame(s.doc)
	s.Equal([]string{"matchScore"}, s.fields(r))

	err := r.Err()
	s.True(errors.Is(err, ErrInvalidDocument))
	s.ErrorContains(err, "matchScore: should have 2 entries, got 1")
}

func (s *GameValidationTestSuite) TestEveryPairFieldChecked() {
	s.doc.SocketIDs = nil
	s.doc.PlayerNames = []string{"a", "b", "c"}
	s.doc.IDTokens = []string{"x"}
	s.doc.PlayerTokens = nil
	s.doc.Ratings = []float64{1}
	s.doc.BoardSettings.Dims = []int{9}

	r := ValidateGame(s.doc)
	s.ElementsMatch([]string{
		"socketIds", "playerNames", "idTokens", "playerTokens", "ratings", "boardSettings.dims",
	}, s.fields(r))
}

func (s *GameValidationTestSuite) TestNestedPositionPairs() {
	s.doc.BoardSettings.StartPos = [][]int{{0, 0}}
	s.doc.BoardSettings.GoalPos = [][]int{{8, 10}, {8}}

	r := ValidateGame(s.doc)
	s.ElementsMatch([]string{"boardSettings.startPos", "boardSettings.goalPos.1"}, s.fields(r))
}

func (s *GameValidationTestSuite) TestNegativeFinalDists() {
	s.doc.FinalDists = []int{0, -1}

	r := ValidateGame(s.doc)
	s.Equal([]string{"finalDists.1"}, s.fields(r))
}

func (s *GameValidationTestSuite) TestEnumeratedStrings() {
	s.doc.Winner = "nobody"
	s.doc.FinishReason = "crash"

	r := ValidateGame(s.doc)
	s.ElementsMatch([]string{"winner", "finishReason"}, s.fields(r))
}

func (s *GameValidationTestSuite) TestMoveActionsArity() {
	s.doc.MoveHistory = append(s.doc.MoveHistory,
		model.MoveDocument{Actions: nil, Timestamp: "t3"},
		model.MoveDocument{Actions: [][]int{{1, 1}, {1, 2}, {1, 3}}, Timestamp: "t4"},
		model.MoveDocument{Actions: [][]int{{1}}, Timestamp: "t5"},
	)

	r := ValidateGame(s.doc)
	s.ElementsMatch([]string{
		"moveHistory.2.actions", "moveHistory.3.actions", "moveHistory.4.actions.0",
	}, s.fields(r))
}

func (s *GameValidationTestSuite) TestRequiredFields() {
	s.doc.JoinCode = ""
	s.doc.Version = ""
	s.doc.StartDate = time.Time{}
	s.doc.MoveHistory[0].Timestamp = ""

	r := ValidateGame(s.doc)
	s.ElementsMatch([]string{"joinCode", "version", "startDate", "moveHistory.0.timestamp"}, s.fields(r))
}

func (s *GameValidationTestSuite) TestCollectsAllErrors() {
	s.doc.MatchScore = nil
	s.doc.Winner = ""
	s.doc.NumMoves = -1

	r := ValidateGame(s.doc)
	s.Len(r.Errors, 3)

	var verr *Error
	s.Require().ErrorAs(r.Err(), &verr)
	s.Len(verr.Errors, 3)
}

func (s *GameValidationTestSuite) TestMessagesNameTheRule() {
	s.doc.FinalDists = []int{0, -1}
	s.doc.Winner = "nobody"
	s.doc.BoardSettings.StartPos = [][]int{{0, 0}, {0}}
	s.doc.MoveHistory[0].Actions = [][]int{{1, 1}, {1, 2}, {1, 3}}

	err := ValidateGame(s.doc).Err()
	s.Require().Error(err)
	s.ErrorContains(err, "finalDists.1: must be at least 0, got -1")
	s.ErrorContains(err, `winner: "nobody" should be one of: creator, joiner, draw`)
	s.ErrorContains(err, "boardSettings.startPos.1: should have 2 entries, got 1")
	s.ErrorContains(err, "moveHistory.0.actions: should have at most 2 entries, got 3")
}

func (s *GameValidationTestSuite) TestEmptyMoveActions() {
	s.doc.MoveHistory[1].Actions = [][]int{}

	r := ValidateGame(s.doc)
	s.Require().Len(r.Errors, 1)
	s.Equal("moveHistory.1.actions: should have at least 1 entries, got 0", r.Errors[0].String())
}

func TestValidatePlayer(t *testing.T) {
	now := time.Now()
	valid := func() *model.Player {
		return &model.Player{
			IDToken:       "Auth0|a",
			Name:          "Alice",
			Rating:        1510,
			PeakRating:    1520,
			GameCount:     3,
			WinCount:      2,
			DrawCount:     1,
			FirstGameDate: &now,
			LastGameDate:  &now,
		}
	}

	assert.True(t, ValidatePlayer(valid()).Valid())
	assert.False(t, ValidatePlayer(nil).Valid())

	p := valid()
	p.IDToken = ""
	assert.False(t, ValidatePlayer(p).Valid())

	p = valid()
	p.FirstGameDate = nil
	assert.False(t, ValidatePlayer(p).Valid())

	p = valid()
	p.WinCount = 3
	r := ValidatePlayer(p)
	assert.False(t, r.Valid())
	assert.ErrorIs(t, r.Err(), ErrInvalidDocument)

	p = valid()
	p.PeakRating = 1400
	assert.False(t, ValidatePlayer(p).Valid())
}

func TestValidatePlayerFieldPaths(t *testing.T) {
	now := time.Now()
	p := &model.Player{
		IDToken:       "",
		Rating:        1510,
		PeakRating:    1400,
		GameCount:     2,
		WinCount:      2,
		DrawCount:     1,
		FirstGameDate: &now,
	}

	r := ValidatePlayer(p)
	got := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		got[i] = e.String()
	}
	assert.ElementsMatch(t, []string{
		"idToken: is required",
		"peakRating: 1400 is below rating",
		"lastGameDate: is required",
		"winCount: wins plus draws (3) exceed games (2)",
	}, got)
}

func TestValidatePlayerNegativeCounter(t *testing.T) {
	now := time.Now()
	p := &model.Player{IDToken: "Auth0|a", GameCount: 1, DrawCount: -1, FirstGameDate: &now, LastGameDate: &now}

	r := ValidatePlayer(p)
	if assert.Len(t, r.Errors, 1) {
		assert.Equal(t, "drawCount", r.Errors[0].Field)
	}
}
