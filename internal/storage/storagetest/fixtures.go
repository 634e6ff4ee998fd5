// Package storagetest holds fixtures and a conformance suite that every storage backend must pass.
package storagetest

import (
	"fmt"
	"strings"
	"time"

	"github.com/mcoot/wallwars-go/internal/model"
)

// BaseTime is the start date used by fixtures unless overridden
var BaseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// Game builds a valid finished-game document with the given number of moves
func Game(moves int, start time.Time) *model.GameDocument {
	history := make([]model.MoveDocument, moves)
	for i := range history {
		history[i] = model.MoveDocument{
			Actions:       [][]int{{i % 9, (i * 2) % 11}},
			RemainingTime: float64(300 - i),
			Timestamp:     start.Add(time.Duration(i) * time.Second).Format(time.RFC3339),
		}
	}
	return &model.GameDocument{
		SocketIDs:   []string{"socket-c", "socket-j"},
		JoinCode:    "JOIN",
		TimeControl: model.TimeControl{Duration: 5, Increment: 2},
		BoardSettings: model.BoardSettingsDocument{
			Dims:     []int{9, 11},
			StartPos: [][]int{{0, 0}, {0, 10}},
			GoalPos:  [][]int{{8, 10}, {8, 0}},
		},
		PlayerNames:   []string{"Creator", "Joiner"},
		IDTokens:      []string{"Auth0|creator", "Auth0|joiner"},
		PlayerTokens:  []string{"token-c", "token-j"},
		MatchScore:    []int{1, 0},
		Winner:        string(model.WinnerCreator),
		FinishReason:  string(model.FinishGoal),
		CreatorStarts: true,
		MoveHistory:   history,
		StartDate:     start,
		IsPublic:      true,
		NumMoves:      moves,
		FinalDists:    []int{0, 4},
		Version:       "1.0",
		Ratings:       []float64{1500, 1520.5},
	}
}

// Finished builds the typed form of Game
func Finished(moves int, start time.Time) *model.FinishedGame {
	g, err := Game(moves, start).ToFinishedGame()
	if err != nil {
		panic(fmt.Sprintf("storagetest: fixture game is malformed: %v", err))
	}
	return g
}

// Player builds a player record that has already played a game
func Player(idToken string, rating float64) *model.Player {
	first := BaseTime
	last := BaseTime.Add(24 * time.Hour)
	return &model.Player{
		IDToken:          idToken,
		Name:             "player " + strings.TrimPrefix(idToken, model.AuthPrefix),
		Rating:           rating,
		PeakRating:       rating + 10,
		RatingDeviation:  120,
		RatingVolatility: 0.06,
		GameCount:        4,
		WinCount:         2,
		DrawCount:        1,
		FirstGameDate:    &first,
		LastGameDate:     &last,
		SolvedPuzzles:    []string{"puzzle-1"},
	}
}
