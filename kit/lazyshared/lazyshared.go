// Package lazyshared holds values that are constructed at most once, on
// first access, and then shared by every caller for the life of the
// process. Construct a container with New (or NewFallible when the
// constructor can fail), hand the container to whatever needs the value,
// and call Get from any goroutine.
package lazyshared

import (
	"sync"
	"sync/atomic"
)

type State uint32

const (
	Empty State = iota
	Constructing
	Ready
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Constructing:
		return "constructing"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Getter is what consumers of a shared value should depend on.
type Getter[T any] interface {
	Get() T
}

type Instance[T any] struct {
	get   func() T
	state atomic.Uint32
	val   T
}

// New returns an Instance that runs ctor the first time Get is called.
// If ctor panics, every Get re-panics with the same value.
func New[T any](ctor func() T) *Instance[T] {
	if ctor == nil {
		panic("lazyshared: nil constructor")
	}
	i := &Instance[T]{}
	i.get = sync.OnceValue(func() T {
		i.state.Store(uint32(Constructing))
		v := ctor()
		i.val = v
		i.state.Store(uint32(Ready))
		return v
	})
	return i
}

// Get returns the shared value, constructing it if this is the first call.
// Callers racing the first construction block until it completes.
func (i *Instance[T]) Get() T {
	if i.state.Load() == uint32(Ready) {
		return i.val
	}
	return i.get()
}

// Peek returns the value without ever constructing it.
func (i *Instance[T]) Peek() (T, bool) {
	if i.state.Load() == uint32(Ready) {
		return i.val, true
	}
	var zero T
	return zero, false
}

// State reports where construction stands. If the constructor panicked,
// the state stays Constructing for good and never reaches Ready, so do not
// poll State waiting for Ready; call Get, which re-panics.
func (i *Instance[T]) State() State {
	return State(i.state.Load())
}
