package random

import "math/rand/v2"

// Random draws sampling offsets, mockable in tests
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// Source implements Random with the runtime's goroutine-safe generator.
type Source struct{}

// New creates a new Source
func New() *Source {
	return &Source{}
}

// Intn returns a uniformly distributed int in [0, n), or 0 when n <= 0
func (Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}
