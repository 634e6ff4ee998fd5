package mocks

import (
	"sync/atomic"

	"github.com/mcoot/wallwars-go/internal/availability"
)

// MockAvailability is a Checker whose state is flipped directly by tests
type MockAvailability struct {
	state atomic.Int32
}

var _ availability.Checker = (*MockAvailability)(nil)

// NewMockAvailability creates a MockAvailability that is ready when available is true and failed otherwise
func NewMockAvailability(available bool) *MockAvailability {
	m := &MockAvailability{}
	m.SetAvailable(available)
	return m
}

// Available reports whether the mock is in the ready state
func (m *MockAvailability) Available() bool {
	return m.State() == availability.StateReady
}

// State returns the current mocked state
func (m *MockAvailability) State() availability.State {
	return availability.State(m.state.Load())
}

// SetAvailable switches between ready and failed
func (m *MockAvailability) SetAvailable(available bool) {
	if available {
		m.SetState(availability.StateReady)
	} else {
		m.SetState(availability.StateFailed)
	}
}

// SetState sets an arbitrary state, including pending
func (m *MockAvailability) SetState(s availability.State) {
	m.state.Store(int32(s))
}
