// Package rating computes skill ratings from game outcomes.
package rating

import "math"

// Triple is a player's rating, rating deviation and rating volatility
type Triple struct {
	Rating     float64
	Deviation  float64
	Volatility float64
}

// Engine updates a rating triple from a single game result.
// Score is 1 for a win, 0.5 for a draw and 0 for a loss.
type Engine interface {
	Initial() Triple
	Update(player, opponent Triple, score float64) Triple
}

// Glicko-2 system constants
const (
	scale            = 173.7178
	baseRating       = 1500.0
	defaultDeviation = 350.0
	defaultVolatil   = 0.06
	defaultTau       = 0.5
	epsilon          = 1e-6
)

// Config holds the tunable system constant of the Glicko-2 engine
type Config struct {
	// Tau constrains how much volatility can change per game
	Tau float64
}

// DefaultConfig returns the commonly used tau of 0.5
func DefaultConfig() Config {
	return Config{Tau: defaultTau}
}

// Glicko2 is an Engine treating every game as its own rating period
type Glicko2 struct {
	tau float64
}

var _ Engine = (*Glicko2)(nil)

// NewGlicko2 creates a Glicko-2 engine
func NewGlicko2(cfg Config) *Glicko2 {
	if cfg.Tau <= 0 {
		cfg.Tau = defaultTau
	}
	return &Glicko2{tau: cfg.Tau}
}

// Initial returns the triple given to a player with no games
func (e *Glicko2) Initial() Triple {
	return Triple{Rating: baseRating, Deviation: defaultDeviation, Volatility: defaultVolatil}
}

// Update returns the player's triple after one game against opponent
func (e *Glicko2) Update(player, opponent Triple, score float64) Triple {
	mu := (player.Rating - baseRating) / scale
	phi := player.Deviation / scale
	muJ := (opponent.Rating - baseRating) / scale
	phiJ := opponent.Deviation / scale

	gJ := g(phiJ)
	exp := expectedScore(mu, muJ, gJ)
	v := 1 / (gJ * gJ * exp * (1 - exp))
	delta := v * gJ * (score - exp)

	sigma := e.volatility(phi, v, delta, player.Volatility)

	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	newPhi := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	newMu := mu + newPhi*newPhi*gJ*(score-exp)

	deviation := newPhi * scale
	if deviation > defaultDeviation {
		deviation = defaultDeviation
	}

	return Triple{
		Rating:     newMu*scale + baseRating,
		Deviation:  deviation,
		Volatility: sigma,
	}
}

// volatility finds the new volatility with the Illinois variant of regula falsi
func (e *Glicko2) volatility(phi, v, delta, sigma float64) float64 {
	a := math.Log(sigma * sigma)
	tau2 := e.tau * e.tau
	phi2 := phi * phi
	delta2 := delta * delta

	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phi2 + v + ex
		return ex*(delta2-phi2-v-ex)/(2*d*d) - (x-a)/tau2
	}

	A := a
	var B float64
	if delta2 > phi2+v {
		B = math.Log(delta2 - phi2 - v)
	} else {
		k := 1.0
		for f(a-k*e.tau) < 0 {
			k++
		}
		B = a - k*e.tau
	}

	fA, fB := f(A), f(B)
	for math.Abs(B-A) > epsilon {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}

	return math.Exp(A / 2)
}

// g dampens the impact of an opponent with an uncertain rating
func g(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

// expectedScore is the win probability against the opponent on the Glicko-2 scale
func expectedScore(mu, muJ, gJ float64) float64 {
	return 1 / (1 + math.Exp(-gJ*(mu-muJ)))
}
