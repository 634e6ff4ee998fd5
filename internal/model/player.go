package model

import (
	"slices"
	"strings"
	"time"
)

// AuthPrefix marks identity tokens issued by the authentication provider.
// Any other token belongs to a guest.
const AuthPrefix = "Auth0|"

// IsGuest reports whether idToken belongs to an unauthenticated player
func IsGuest(idToken string) bool {
	return !strings.HasPrefix(idToken, AuthPrefix)
}

// Player is the persisted record of an authenticated player.
// FirstGameDate and LastGameDate are nil until the record is first bootstrapped,
// after which both are always set.
type Player struct {
	IDToken          string     `json:"idToken" bson:"idToken" validate:"required"`
	Name             string     `json:"name" bson:"name"`
	Rating           float64    `json:"rating" bson:"rating"`
	PeakRating       float64    `json:"peakRating" bson:"peakRating" validate:"gtefield=Rating"`
	RatingDeviation  float64    `json:"ratingDeviation" bson:"ratingDeviation"`
	RatingVolatility float64    `json:"ratingVolatility" bson:"ratingVolatility"`
	GameCount        int        `json:"gameCount" bson:"gameCount" validate:"gte=0"`
	WinCount         int        `json:"winCount" bson:"winCount" validate:"gte=0"`
	DrawCount        int        `json:"drawCount" bson:"drawCount" validate:"gte=0"`
	FirstGameDate    *time.Time `json:"firstGameDate" bson:"firstGameDate" validate:"required"`
	LastGameDate     *time.Time `json:"lastGameDate" bson:"lastGameDate" validate:"required"`
	SolvedPuzzles    []string   `json:"solvedPuzzles" bson:"solvedPuzzles"`
}

// RankedPlayer is a Player as shown on the public leaderboard (no identity token)
type RankedPlayer struct {
	Name             string     `json:"name"`
	Rating           float64    `json:"rating"`
	PeakRating       float64    `json:"peakRating"`
	RatingDeviation  float64    `json:"ratingDeviation"`
	RatingVolatility float64    `json:"ratingVolatility"`
	GameCount        int        `json:"gameCount"`
	WinCount         int        `json:"winCount"`
	DrawCount        int        `json:"drawCount"`
	FirstGameDate    *time.Time `json:"firstGameDate"`
	LastGameDate     *time.Time `json:"lastGameDate"`
	SolvedPuzzles    []string   `json:"solvedPuzzles"`
}

// Ranked strips the identity token
func (p *Player) Ranked() RankedPlayer {
	c := p.Clone()
	return RankedPlayer{
		Name:             c.Name,
		Rating:           c.Rating,
		PeakRating:       c.PeakRating,
		RatingDeviation:  c.RatingDeviation,
		RatingVolatility: c.RatingVolatility,
		GameCount:        c.GameCount,
		WinCount:         c.WinCount,
		DrawCount:        c.DrawCount,
		FirstGameDate:    c.FirstGameDate,
		LastGameDate:     c.LastGameDate,
		SolvedPuzzles:    c.SolvedPuzzles,
	}
}

// HasSolved reports whether the puzzle is already in the solved set
func (p *Player) HasSolved(puzzleID string) bool {
	return slices.Contains(p.SolvedPuzzles, puzzleID)
}

// Clone returns a deep copy so stored records never alias caller state
func (p *Player) Clone() *Player {
	c := *p
	c.FirstGameDate = cloneTime(p.FirstGameDate)
	c.LastGameDate = cloneTime(p.LastGameDate)
	if p.SolvedPuzzles != nil {
		c.SolvedPuzzles = slices.Clone(p.SolvedPuzzles)
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
