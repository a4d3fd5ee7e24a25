// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package singleton

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/z5labs/keystone/internal/try"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/z5labs/keystone/singleton"

// Provider is satisfied by *T when T provides the shared instance of itself.
//
// Init is the parameterless initializer. It is called exactly once, on the
// zero value returned by new(T), the first time the instance is requested.
type Provider[T any] interface {
	*T

	Init() error
}

// InitError is returned when a type's Init fails or panics.
type InitError struct {
	Type  reflect.Type
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InitError) Error() string {
	return fmt.Sprintf("singleton: failed to initialize %s: %s", e.Type, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InitError) Unwrap() error {
	return e.Cause
}

// slots maps reflect.Type to *Lazy[*T]. Entries are never removed.
var slots sync.Map

// Instance returns the process wide instance of T, constructing it on the
// first call. Every call for the same T returns the same pointer.
//
// If construction fails, the resulting [InitError] is returned by this call
// and by every later call for T.
func Instance[T any, P Provider[T]]() (*T, error) {
	return slot[T, P]().Get()
}

// MustInstance is like [Instance] but panics if construction failed.
func MustInstance[T any, P Provider[T]]() *T {
	return slot[T, P]().MustGet()
}

// StateOf reports the state of T's instance without constructing it.
func StateOf[T any, P Provider[T]]() State {
	v, ok := slots.Load(reflect.TypeFor[T]())
	if !ok {
		return Uninitialized
	}
	return v.(*Lazy[*T]).State()
}

func slot[T any, P Provider[T]]() *Lazy[*T] {
	typ := reflect.TypeFor[T]()
	v, ok := slots.Load(typ)
	if ok {
		return v.(*Lazy[*T])
	}

	// a losing LoadOrStore discards its Lazy before it is ever read
	v, _ = slots.LoadOrStore(typ, NewLazy(construct[T, P]))
	return v.(*Lazy[*T])
}

func construct[T any, P Provider[T]]() (_ *T, err error) {
	typ := reflect.TypeFor[T]()

	_, span := otel.Tracer(instrumentationName).Start(
		context.Background(),
		"singleton.Instance",
		trace.WithAttributes(attribute.String("singleton.type", typ.String())),
	)
	defer span.End()

	defer func() {
		if err == nil {
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		err = InitError{
			Type:  typ,
			Cause: err,
		}
	}()
	defer try.Recover(&err)

	t := new(T)
	err = P(t).Init()
	if err != nil {
		return nil, err
	}
	return t, nil
}
