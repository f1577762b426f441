// Package singleton shows the process-wide shared instance built on
// kit/lazyshared. Code that needs the instance should accept a
// lazyshared.Getter[*State] so tests can pass their own container.
package singleton

import (
	"sync"
	"sync/atomic"

	"github.com/river-now/patterns/kit/colorlog"
	"github.com/river-now/patterns/kit/lazyshared"
)

var Log = colorlog.New("singleton")

var (
	constructions atomic.Int64
	shared        = NewContainer()
)

// State is the shared value. It is safe for concurrent use.
type State struct {
	mu    sync.RWMutex
	value int
}

func (s *State) Value() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *State) SetValue(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

// Add adds delta and returns the new value.
func (s *State) Add(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value += delta
	return s.value
}

// NewContainer returns a fresh, unconstructed container. Every container
// counts toward Constructions once it builds its State.
func NewContainer() *lazyshared.Instance[*State] {
	return lazyshared.New(func() *State {
		n := constructions.Add(1)
		Log.Debug("constructed shared state", "construction", n)
		return &State{}
	})
}

// Shared returns the process-scoped container.
func Shared() *lazyshared.Instance[*State] {
	return shared
}

// Instance is Shared().Get().
func Instance() *State {
	return shared.Get()
}

// Constructions is the number of States built by any container.
func Constructions() int64 {
	return constructions.Load()
}
