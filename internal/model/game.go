package model

import "time"

// GameID identifies a stored finished game
type GameID string

// Winner records who won a finished game
type Winner string

const (
	WinnerCreator Winner = "creator"
	WinnerJoiner  Winner = "joiner"
	WinnerDraw    Winner = "draw"
)

// Scores returns the (creator, joiner) score pair for the outcome.
// An unknown winner scores as a draw.
func (w Winner) Scores() (creator, joiner float64) {
	switch w {
	case WinnerCreator:
		return 1, 0
	case WinnerJoiner:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}

// FinishReason records why a game ended
type FinishReason string

const (
	FinishGoal      FinishReason = "goal"
	FinishAgreement FinishReason = "agreement"
	FinishTime      FinishReason = "time"
	FinishResign    FinishReason = "resign"
	FinishAbandon   FinishReason = "abandon"
)

// Winners lists every valid Winner value
var Winners = []Winner{WinnerCreator, WinnerJoiner, WinnerDraw}

// FinishReasons lists every valid FinishReason value
var FinishReasons = []FinishReason{FinishGoal, FinishAgreement, FinishTime, FinishResign, FinishAbandon}

// Pos is a (row, col) board coordinate
type Pos [2]int

// Action is the grid cell clicked for one action (walkable cell, wall or pillar)
type Action [2]int

// TimeControl is the clock setting of a game
type TimeControl struct {
	Duration  int `json:"duration" bson:"duration"`
	Increment int `json:"increment" bson:"increment"`
}

// BoardSettings describes the board a game was played on.
// Index 0 is the creator, index 1 the joiner.
type BoardSettings struct {
	Dims     [2]int `json:"dims"`
	StartPos [2]Pos `json:"startPos"`
	GoalPos  [2]Pos `json:"goalPos"`
}

// Move is one turn: one or two actions, the mover's remaining clock time and a timestamp
type Move struct {
	Actions       []Action `json:"actions"`
	RemainingTime float64  `json:"remainingTime"`
	Timestamp     string   `json:"timestamp"`
}

// PublicGame is a finished game as shown to any client.
// All pairs are indexed creator first, joiner second.
type PublicGame struct {
	ID            GameID        `json:"_id"`
	SocketIDs     [2]string     `json:"socketIds"`
	JoinCode      string        `json:"joinCode"`
	TimeControl   TimeControl   `json:"timeControl"`
	BoardSettings BoardSettings `json:"boardSettings"`
	PlayerNames   [2]string     `json:"playerNames"`
	PlayerTokens  [2]string     `json:"playerTokens"`
	MatchScore    [2]int        `json:"matchScore"`
	Winner        Winner        `json:"winner"`
	FinishReason  FinishReason  `json:"finishReason"`
	CreatorStarts bool          `json:"creatorStarts"`
	MoveHistory   []Move        `json:"moveHistory"`
	StartDate     time.Time     `json:"startDate"`
	IsPublic      bool          `json:"isPublic"`
	NumSpectators int           `json:"numSpectators"`
	NumMoves      int           `json:"numMoves"`
	FinalDists    [2]int        `json:"finalDists"`
	Version       string        `json:"version"`
	Ratings       [2]float64    `json:"ratings"`
}

// FinishedGame is the complete record handed over by the game engine when a game ends.
// It is the only form that carries the players' identity tokens.
type FinishedGame struct {
	PublicGame
	IDTokens [2]string `json:"idTokens"`
}

// GameSummary is the lightweight projection used for recent-games listings
type GameSummary struct {
	ID          GameID      `json:"_id" bson:"-"`
	PlayerNames []string    `json:"playerNames" bson:"playerNames"`
	TimeControl TimeControl `json:"timeControl" bson:"timeControl"`
	Winner      Winner      `json:"winner" bson:"winner"`
	StartDate   time.Time   `json:"startDate" bson:"startDate"`
	Ratings     []float64   `json:"ratings" bson:"ratings"`
	NumMoves    int         `json:"numMoves" bson:"numMoves"`
}

// Summary projects a document to its summary
func (d *GameDocument) Summary() GameSummary {
	return GameSummary{
		ID:          GameID(d.ID),
		PlayerNames: append([]string(nil), d.PlayerNames...),
		TimeControl: d.TimeControl,
		Winner:      Winner(d.Winner),
		StartDate:   d.StartDate,
		Ratings:     append([]float64(nil), d.Ratings...),
		NumMoves:    d.NumMoves,
	}
}
