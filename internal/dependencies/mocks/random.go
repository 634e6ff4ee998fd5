package mocks

import (
	"sync"

	"github.com/mcoot/wallwars-go/internal/dependencies/random"
)

// MockRandom returns queued Intn results and records the bounds it was asked for
type MockRandom struct {
	mu      sync.Mutex
	results []int
	bounds  []int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 once the queue is empty.
// Results are clamped to [0, n) so a stale queue cannot produce an out of range offset.
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bounds = append(r.bounds, n)
	if len(r.results) == 0 || n <= 0 {
		return 0
	}
	v := r.results[0]
	r.results = r.results[1:]
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, values...)
}

// Bounds returns every n passed to Intn so far
func (r *MockRandom) Bounds() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.bounds...)
}

// Reset clears queued results and recorded bounds
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = nil
	r.bounds = nil
}
