// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package singleton

import (
	"sync"
	"sync/atomic"

	"github.com/z5labs/keystone/internal/try"
)

// State describes where a lazily constructed value is in its lifecycle.
type State int32

const (
	Uninitialized State = iota
	Constructing
	Ready
	Faulted
)

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Constructing:
		return "constructing"
	case Ready:
		return "ready"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Lazy holds a single value which is constructed on first access.
//
// Lazy is safe for concurrent use. The constructor is invoked at most once,
// even under concurrent first access, and its outcome is permanent: a
// constructed value is returned forever and so is a construction error.
type Lazy[T any] struct {
	state atomic.Int32

	mu    sync.Mutex
	build func() (T, error)
	value T
	err   error
}

// NewLazy returns a Lazy which constructs its value with f.
func NewLazy[T any](f func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: f}
}

// Get returns the value, constructing it if this is the first access.
func (l *Lazy[T]) Get() (T, error) {
	switch State(l.state.Load()) {
	case Ready:
		return l.value, nil
	case Faulted:
		var zero T
		return zero, l.err
	}
	return l.getSlow()
}

// MustGet is like Get but panics if construction failed.
func (l *Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// State reports the current lifecycle state without triggering construction.
func (l *Lazy[T]) State() State {
	return State(l.state.Load())
}

func (l *Lazy[T]) getSlow() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch State(l.state.Load()) {
	case Ready:
		return l.value, nil
	case Faulted:
		var zero T
		return zero, l.err
	}

	l.state.Store(int32(Constructing))
	v, err := l.construct()

	// the constructor is never needed again
	l.build = nil

	if err != nil {
		l.err = err
		l.state.Store(int32(Faulted))
		var zero T
		return zero, err
	}
	l.value = v
	l.state.Store(int32(Ready))
	return v, nil
}

func (l *Lazy[T]) construct() (v T, err error) {
	defer try.Recover(&err)
	return l.build()
}
