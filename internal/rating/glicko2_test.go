package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialTriple(t *testing.T) {
	e := NewGlicko2(DefaultConfig())
	assert.Equal(t, Triple{Rating: 1500, Deviation: 350, Volatility: 0.06}, e.Initial())
}

func TestZeroTauFallsBackToDefault(t *testing.T) {
	e := NewGlicko2(Config{})
	assert.Equal(t, 0.5, e.tau)
}

func TestWinnerGainsLoserLoses(t *testing.T) {
	e := NewGlicko2(DefaultConfig())
	p1 := Triple{Rating: 1500, Deviation: 200, Volatility: 0.06}
	p2 := Triple{Rating: 1600, Deviation: 150, Volatility: 0.05}

	p1New := e.Update(p1, p2, 1)
	p2New := e.Update(p2, p1, 0)

	assert.Greater(t, p1New.Rating, p1.Rating)
	assert.Less(t, p2New.Rating, p2.Rating)

	// An upset win against a higher rated opponent is worth more than the expected share
	assert.Greater(t, p1New.Rating-p1.Rating, p2.Rating-p2New.Rating)
}

func TestDeviationShrinksAfterAGame(t *testing.T) {
	e := NewGlicko2(DefaultConfig())
	p := e.Initial()

	updated := e.Update(p, e.Initial(), 0.5)
	assert.Less(t, updated.Deviation, p.Deviation)
}

func TestDrawBetweenEqualPlayersKeepsRating(t *testing.T) {
	e := NewGlicko2(DefaultConfig())
	p := Triple{Rating: 1700, Deviation: 80, Volatility: 0.06}

	updated := e.Update(p, p, 0.5)
	assert.InDelta(t, 1700, updated.Rating, 1e-9)
}

func TestSymmetricOutcomes(t *testing.T) {
	e := NewGlicko2(DefaultConfig())
	p := Triple{Rating: 1500, Deviation: 120, Volatility: 0.06}

	win := e.Update(p, p, 1)
	loss := e.Update(p, p, 0)

	assert.InDelta(t, win.Rating-1500, 1500-loss.Rating, 1e-9)
	assert.InDelta(t, win.Deviation, loss.Deviation, 1e-9)
}

func TestVolatilityStaysNearPrior(t *testing.T) {
	e := NewGlicko2(DefaultConfig())
	p := Triple{Rating: 1500, Deviation: 200, Volatility: 0.06}

	updated := e.Update(p, Triple{Rating: 1400, Deviation: 30, Volatility: 0.06}, 1)
	assert.InDelta(t, 0.06, updated.Volatility, 0.001)
}

func TestDeviationNeverExceedsInitial(t *testing.T) {
	e := NewGlicko2(DefaultConfig())
	p := Triple{Rating: 1500, Deviation: 350, Volatility: 0.5}

	updated := e.Update(p, Triple{Rating: 2500, Deviation: 350, Volatility: 0.06}, 1)
	assert.LessOrEqual(t, updated.Deviation, 350.0)
}
