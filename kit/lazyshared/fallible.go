package lazyshared

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

var ErrConstruct = errors.New("lazyshared: construction failed")

// Policy decides what happens after a constructor returns an error.
type Policy uint8

const (
	// RetryOnError reports the failure to every caller that was waiting on
	// the failed attempt. The next caller starts a new attempt.
	RetryOnError Policy = iota
	// CacheError makes the first outcome permanent, success or failure.
	CacheError
)

func (p Policy) String() string {
	switch p {
	case RetryOnError:
		return "retry-on-error"
	case CacheError:
		return "cache-error"
	default:
		return "unknown"
	}
}

const flightKey = "construct"

type Fallible[T any] struct {
	ctor     func() (T, error)
	policy   Policy
	ready    atomic.Pointer[T]
	attempts atomic.Int64

	flight singleflight.Group // RetryOnError
	cached func() (*T, error) // CacheError
}

func NewFallible[T any](ctor func() (T, error), policy Policy) *Fallible[T] {
	if ctor == nil {
		panic("lazyshared: nil constructor")
	}
	f := &Fallible[T]{ctor: ctor, policy: policy}
	if policy == CacheError {
		f.cached = sync.OnceValues(f.attempt)
	}
	return f
}

// Get returns the shared value, constructing it if needed. A constructor
// error comes back wrapped in ErrConstruct.
func (f *Fallible[T]) Get() (T, error) {
	if p := f.ready.Load(); p != nil {
		return *p, nil
	}

	var p *T
	var err error
	if f.policy == CacheError {
		p, err = f.cached()
	} else {
		var v any
		v, err, _ = f.flight.Do(flightKey, func() (any, error) {
			// another flight may have finished between our load and Do
			if ready := f.ready.Load(); ready != nil {
				return ready, nil
			}
			return f.attempt()
		})
		if err == nil {
			p = v.(*T)
		}
	}

	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// MustGet is Get, panicking on error.
func (f *Fallible[T]) MustGet() T {
	v, err := f.Get()
	if err != nil {
		panic(err)
	}
	return v
}

func (f *Fallible[T]) Peek() (T, bool) {
	if p := f.ready.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Attempts is the number of times the constructor has run.
func (f *Fallible[T]) Attempts() int64 {
	return f.attempts.Load()
}

func (f *Fallible[T]) Policy() Policy {
	return f.policy
}

func (f *Fallible[T]) attempt() (*T, error) {
	f.attempts.Add(1)
	v, err := f.ctor()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruct, err)
	}
	f.ready.Store(&v)
	return &v, nil
}
