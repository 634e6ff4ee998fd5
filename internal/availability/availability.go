// Package availability tracks whether the backing store can be used.
//
// A Handle starts pending and resolves to ready or failed exactly once, when the
// connection attempt it was given completes. Services consult it before every
// storage call and degrade to "no result" while it is not ready.
package availability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// State is the lifecycle stage of a Handle
type State int32

const (
	StatePending State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// ErrAlreadyConnecting is returned when Connect is called on a handle that was already started
var ErrAlreadyConnecting = errors.New("connection attempt already started")

// Checker is consulted synchronously before any storage I/O
type Checker interface {
	Available() bool
	State() State
}

// Handle is a Checker backed by a single connection attempt
type Handle struct {
	state   atomic.Int32
	started atomic.Bool
	once    sync.Once
	done    chan struct{}
	err     error
}

var _ Checker = (*Handle)(nil)

// New creates a pending handle
func New() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Ready creates a handle that is already available
func Ready() *Handle {
	h := New()
	h.resolve(nil)
	return h
}

// Connect runs connect in the background and resolves the handle with its outcome
func (h *Handle) Connect(ctx context.Context, connect func(context.Context) error) error {
	if !h.started.CompareAndSwap(false, true) {
		return ErrAlreadyConnecting
	}
	go func() {
		h.resolve(connect(ctx))
	}()
	return nil
}

func (h *Handle) resolve(err error) {
	h.once.Do(func() {
		h.started.Store(true)
		h.err = err
		if err != nil {
			h.state.Store(int32(StateFailed))
		} else {
			h.state.Store(int32(StateReady))
		}
		close(h.done)
	})
}

// Available reports whether the store connected successfully
func (h *Handle) Available() bool {
	return h.State() == StateReady
}

// State returns the current lifecycle stage
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Wait blocks until the handle resolves or ctx is done, returning the connection error if any
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
