// Package session holds the in-memory view of tasks and categories that
// the UI renders from. A session loads its collection once, then keeps it
// in sync by applying each confirmed mutation locally.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrMutationFailed is returned when the service did not confirm a change.
// The wrapped message is the human-readable text also stored as the
// session error.
var ErrMutationFailed = errors.New("mutation failed")

// State is the load state of a session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// base carries the state, error message and change listener shared by
// every session.
type base struct {
	mu       sync.Mutex
	state    State
	errMsg   string
	onChange func()
}

// OnChange registers fn to run after every state or data change. It runs
// without the session lock held.
func (b *base) OnChange(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// State returns the current load state.
func (b *base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Loading reports whether a load is in progress.
func (b *base) Loading() bool { return b.State() == StateLoading }

// Err returns the last human-readable error, or "".
func (b *base) Err() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg
}

// ClearErr dismisses the current error message.
func (b *base) ClearErr() {
	b.mu.Lock()
	b.errMsg = ""
	if b.state == StateError {
		b.state = StateIdle
	}
	b.mu.Unlock()
	b.notify()
}

func (b *base) notify() {
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// fail records msg and returns it wrapped in ErrMutationFailed.
func (b *base) fail(msg string) error {
	b.mu.Lock()
	b.errMsg = msg
	b.mu.Unlock()
	b.notify()
	return fmt.Errorf("%w: %s", ErrMutationFailed, msg)
}
