package model

import (
	"fmt"
	"time"
)

// GameDocument is the persisted, schema-less shape of a finished game.
// Pairs are plain slices here; the validate tags carry their arity and enum rules.
// Field names are part of the storage contract.
type GameDocument struct {
	ID            string                `json:"_id" bson:"-"`
	SocketIDs     []string              `json:"socketIds" bson:"socketIds" validate:"len=2"`
	JoinCode      string                `json:"joinCode" bson:"joinCode" validate:"required"`
	TimeControl   TimeControl           `json:"timeControl" bson:"timeControl"`
	BoardSettings BoardSettingsDocument `json:"boardSettings" bson:"boardSettings"`
	PlayerNames   []string              `json:"playerNames" bson:"playerNames" validate:"len=2"`
	IDTokens      []string              `json:"idTokens" bson:"idTokens" validate:"len=2"`
	PlayerTokens  []string              `json:"playerTokens" bson:"playerTokens" validate:"len=2"`
	MatchScore    []int                 `json:"matchScore" bson:"matchScore" validate:"len=2"`
	Winner        string                `json:"winner" bson:"winner" validate:"oneof=creator joiner draw"`
	FinishReason  string                `json:"finishReason" bson:"finishReason" validate:"oneof=goal agreement time resign abandon"`
	CreatorStarts bool                  `json:"creatorStarts" bson:"creatorStarts"`
	MoveHistory   []MoveDocument        `json:"moveHistory" bson:"moveHistory" validate:"dive"`
	StartDate     time.Time             `json:"startDate" bson:"startDate" validate:"required"`
	IsPublic      bool                  `json:"isPublic" bson:"isPublic"`
	NumSpectators int                   `json:"numSpectators" bson:"numSpectators" validate:"gte=0"`
	NumMoves      int                   `json:"numMoves" bson:"numMoves" validate:"gte=0"`
	FinalDists    []int                 `json:"finalDists" bson:"finalDists" validate:"len=2,dive,gte=0"`
	Version       string                `json:"version" bson:"version" validate:"required"`
	Ratings       []float64             `json:"ratings" bson:"ratings" validate:"len=2"`
}

// BoardSettingsDocument is the persisted shape of BoardSettings
type BoardSettingsDocument struct {
	Dims     []int   `json:"dims" bson:"dims" validate:"len=2"`
	StartPos [][]int `json:"startPos" bson:"startPos" validate:"len=2,dive,len=2"`
	GoalPos  [][]int `json:"goalPos" bson:"goalPos" validate:"len=2,dive,len=2"`
}

// MoveDocument is the persisted shape of a Move
type MoveDocument struct {
	Actions       [][]int `json:"actions" bson:"actions" validate:"min=1,max=2,dive,len=2"`
	RemainingTime float64 `json:"remainingTime" bson:"remainingTime"`
	Timestamp     string  `json:"timestamp" bson:"timestamp" validate:"required"`
}

// ToDocument flattens a finished game into its persisted shape
func (g *FinishedGame) ToDocument() *GameDocument {
	moves := make([]MoveDocument, len(g.MoveHistory))
	for i, m := range g.MoveHistory {
		actions := make([][]int, len(m.Actions))
		for j, a := range m.Actions {
			actions[j] = []int{a[0], a[1]}
		}
		moves[i] = MoveDocument{
			Actions:       actions,
			RemainingTime: m.RemainingTime,
			Timestamp:     m.Timestamp,
		}
	}

	return &GameDocument{
		ID:          string(g.ID),
		SocketIDs:   cloneSlice(g.SocketIDs[:]),
		JoinCode:    g.JoinCode,
		TimeControl: g.TimeControl,
		BoardSettings: BoardSettingsDocument{
			Dims:     cloneSlice(g.BoardSettings.Dims[:]),
			StartPos: posPairToSlices(g.BoardSettings.StartPos),
			GoalPos:  posPairToSlices(g.BoardSettings.GoalPos),
		},
		PlayerNames:   cloneSlice(g.PlayerNames[:]),
		IDTokens:      cloneSlice(g.IDTokens[:]),
		PlayerTokens:  cloneSlice(g.PlayerTokens[:]),
		MatchScore:    cloneSlice(g.MatchScore[:]),
		Winner:        string(g.Winner),
		FinishReason:  string(g.FinishReason),
		CreatorStarts: g.CreatorStarts,
		MoveHistory:   moves,
		StartDate:     g.StartDate,
		IsPublic:      g.IsPublic,
		NumSpectators: g.NumSpectators,
		NumMoves:      g.NumMoves,
		FinalDists:    cloneSlice(g.FinalDists[:]),
		Version:       g.Version,
		Ratings:       cloneSlice(g.Ratings[:]),
	}
}

// ToPublicGame reshapes a stored document into typed tuples, dropping the identity tokens.
// The document must have passed validation; a malformed pair is reported as an error.
func (d *GameDocument) ToPublicGame() (*PublicGame, error) {
	g := &PublicGame{
		ID:            GameID(d.ID),
		JoinCode:      d.JoinCode,
		TimeControl:   d.TimeControl,
		Winner:        Winner(d.Winner),
		FinishReason:  FinishReason(d.FinishReason),
		CreatorStarts: d.CreatorStarts,
		StartDate:     d.StartDate,
		IsPublic:      d.IsPublic,
		NumSpectators: d.NumSpectators,
		NumMoves:      d.NumMoves,
		Version:       d.Version,
	}

	var err error
	if g.SocketIDs, err = pairOf(d.SocketIDs, "socketIds"); err != nil {
		return nil, err
	}
	if g.PlayerNames, err = pairOf(d.PlayerNames, "playerNames"); err != nil {
		return nil, err
	}
	if g.PlayerTokens, err = pairOf(d.PlayerTokens, "playerTokens"); err != nil {
		return nil, err
	}
	if g.MatchScore, err = pairOf(d.MatchScore, "matchScore"); err != nil {
		return nil, err
	}
	if g.FinalDists, err = pairOf(d.FinalDists, "finalDists"); err != nil {
		return nil, err
	}
	if g.Ratings, err = pairOf(d.Ratings, "ratings"); err != nil {
		return nil, err
	}
	if g.BoardSettings.Dims, err = pairOf(d.BoardSettings.Dims, "boardSettings.dims"); err != nil {
		return nil, err
	}
	if g.BoardSettings.StartPos, err = posPairOf(d.BoardSettings.StartPos, "boardSettings.startPos"); err != nil {
		return nil, err
	}
	if g.BoardSettings.GoalPos, err = posPairOf(d.BoardSettings.GoalPos, "boardSettings.goalPos"); err != nil {
		return nil, err
	}

	g.MoveHistory = make([]Move, len(d.MoveHistory))
	for i, m := range d.MoveHistory {
		actions := make([]Action, len(m.Actions))
		for j, a := range m.Actions {
			pair, err := pairOf(a, fmt.Sprintf("moveHistory.%d.actions.%d", i, j))
			if err != nil {
				return nil, err
			}
			actions[j] = Action(pair)
		}
		g.MoveHistory[i] = Move{
			Actions:       actions,
			RemainingTime: m.RemainingTime,
			Timestamp:     m.Timestamp,
		}
	}

	return g, nil
}

// ToFinishedGame reshapes a stored document including the identity tokens
func (d *GameDocument) ToFinishedGame() (*FinishedGame, error) {
	pub, err := d.ToPublicGame()
	if err != nil {
		return nil, err
	}
	tokens, err := pairOf(d.IDTokens, "idTokens")
	if err != nil {
		return nil, err
	}
	return &FinishedGame{PublicGame: *pub, IDTokens: tokens}, nil
}

// Clone returns a deep copy of the document
func (d *GameDocument) Clone() *GameDocument {
	c := *d
	c.SocketIDs = cloneSlice(d.SocketIDs)
	c.PlayerNames = cloneSlice(d.PlayerNames)
	c.IDTokens = cloneSlice(d.IDTokens)
	c.PlayerTokens = cloneSlice(d.PlayerTokens)
	c.MatchScore = cloneSlice(d.MatchScore)
	c.FinalDists = cloneSlice(d.FinalDists)
	c.Ratings = cloneSlice(d.Ratings)
	c.BoardSettings = BoardSettingsDocument{
		Dims:     cloneSlice(d.BoardSettings.Dims),
		StartPos: cloneNested(d.BoardSettings.StartPos),
		GoalPos:  cloneNested(d.BoardSettings.GoalPos),
	}
	if d.MoveHistory != nil {
		c.MoveHistory = make([]MoveDocument, len(d.MoveHistory))
		for i, m := range d.MoveHistory {
			c.MoveHistory[i] = MoveDocument{
				Actions:       cloneNested(m.Actions),
				RemainingTime: m.RemainingTime,
				Timestamp:     m.Timestamp,
			}
		}
	}
	return &c
}

func pairOf[T any](s []T, field string) ([2]T, error) {
	var out [2]T
	if len(s) != 2 {
		return out, fmt.Errorf("%s: expected 2 entries, got %d", field, len(s))
	}
	out[0], out[1] = s[0], s[1]
	return out, nil
}

func posPairOf(s [][]int, field string) ([2]Pos, error) {
	var out [2]Pos
	if len(s) != 2 {
		return out, fmt.Errorf("%s: expected 2 entries, got %d", field, len(s))
	}
	for i := range s {
		p, err := pairOf(s[i], fmt.Sprintf("%s.%d", field, i))
		if err != nil {
			return out, err
		}
		out[i] = Pos(p)
	}
	return out, nil
}

func posPairToSlices(p [2]Pos) [][]int {
	return [][]int{{p[0][0], p[0][1]}, {p[1][0], p[1][1]}}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

func cloneNested(s [][]int) [][]int {
	if s == nil {
		return nil
	}
	out := make([][]int, len(s))
	for i := range s {
		out[i] = cloneSlice(s[i])
	}
	return out
}
