// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package singleton

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/z5labs/keystone/internal/try"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"
)

// Instances are process wide, so every test owns its own types.

var sequentialInits atomic.Int32

type sequential struct {
	n int32
}

func (s *sequential) Init() error {
	s.n = sequentialInits.Add(1)
	return nil
}

var concurrentInits atomic.Int32

type concurrent struct {
	n int32
}

func (c *concurrent) Init() error {
	c.n = concurrentInits.Add(1)
	time.Sleep(20 * time.Millisecond)
	return nil
}

var errBroken = errors.New("broken")

var brokenInits atomic.Int32

type broken struct{}

func (*broken) Init() error {
	brokenInits.Add(1)
	return errBroken
}

var panickyInits atomic.Int32

type panicky struct{}

func (*panicky) Init() error {
	panickyInits.Add(1)
	panic("init panicked")
}

type untouched struct{}

func (*untouched) Init() error { return nil }

type mustBroken struct{}

func (*mustBroken) Init() error { return errBroken }

type mustOk struct{ ok bool }

func (m *mustOk) Init() error {
	m.ok = true
	return nil
}

type traced struct{}

func (*traced) Init() error { return nil }

type tracedBroken struct{}

func (*tracedBroken) Init() error { return errBroken }

func TestInstance(t *testing.T) {
	t.Run("will return the same instance", func(t *testing.T) {
		t.Run("if called sequentially", func(t *testing.T) {
			first, err := Instance[sequential]()
			require.NoError(t, err)

			second, err := Instance[sequential]()
			require.NoError(t, err)

			require.Same(t, first, second)
			require.Equal(t, int32(1), first.n)
			require.Equal(t, int32(1), sequentialInits.Load())
			require.Equal(t, Ready, StateOf[sequential]())
		})

		t.Run("if called concurrently before the instance exists", func(t *testing.T) {
			const callers = 100

			start := make(chan struct{})
			results := make([]*concurrent, callers)

			var g errgroup.Group
			for i := range callers {
				g.Go(func() error {
					<-start
					c, err := Instance[concurrent]()
					results[i] = c
					return err
				})
			}
			close(start)
			require.NoError(t, g.Wait())

			require.Equal(t, int32(1), concurrentInits.Load())
			for _, c := range results {
				require.Same(t, results[0], c)
			}
		})
	})

	t.Run("will return the same InitError", func(t *testing.T) {
		t.Run("if Init returns an error", func(t *testing.T) {
			_, first := Instance[broken]()
			_, second := Instance[broken]()

			var ierr InitError
			require.ErrorAs(t, first, &ierr)
			require.Equal(t, reflect.TypeFor[broken](), ierr.Type)
			require.ErrorIs(t, first, errBroken)
			require.NotEmpty(t, ierr.Error())

			require.Equal(t, first, second)
			require.Equal(t, int32(1), brokenInits.Load())
			require.Equal(t, Faulted, StateOf[broken]())
		})

		t.Run("if Init panics", func(t *testing.T) {
			inst, first := Instance[panicky]()
			require.Nil(t, inst)

			_, second := Instance[panicky]()

			var perr try.PanicError
			require.ErrorAs(t, first, &perr)
			require.Equal(t, "init panicked", perr.Value)

			require.Equal(t, first, second)
			require.Equal(t, int32(1), panickyInits.Load())
		})
	})
}

func TestStateOf(t *testing.T) {
	t.Run("will report Uninitialized", func(t *testing.T) {
		t.Run("if the instance has never been requested", func(t *testing.T) {
			require.Equal(t, Uninitialized, StateOf[untouched]())

			// asking for the state must not register the type either
			require.Equal(t, Uninitialized, StateOf[untouched]())
		})
	})
}

func TestMustInstance(t *testing.T) {
	t.Run("will panic", func(t *testing.T) {
		t.Run("if Init fails", func(t *testing.T) {
			require.Panics(t, func() {
				MustInstance[mustBroken]()
			})

			_, err := Instance[mustBroken]()
			require.ErrorIs(t, err, errBroken)
		})
	})

	t.Run("will return the instance", func(t *testing.T) {
		t.Run("if Init succeeds", func(t *testing.T) {
			m := MustInstance[mustOk]()
			require.True(t, m.ok)

			other, err := Instance[mustOk]()
			require.NoError(t, err)
			require.Same(t, m, other)
		})
	})
}

func TestInstance_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)

	t.Run("will record a span", func(t *testing.T) {
		t.Run("if the instance is constructed", func(t *testing.T) {
			exporter.Reset()

			_, err := Instance[traced]()
			require.NoError(t, err)

			_, err = Instance[traced]()
			require.NoError(t, err)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			require.Equal(t, "singleton.Instance", spans[0].Name)
			require.Contains(t, spans[0].Attributes, attribute.String("singleton.type", reflect.TypeFor[traced]().String()))
			require.Equal(t, codes.Unset, spans[0].Status.Code)
		})

		t.Run("if the construction fails", func(t *testing.T) {
			exporter.Reset()

			_, err := Instance[tracedBroken]()
			require.ErrorIs(t, err, errBroken)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			require.Equal(t, codes.Error, spans[0].Status.Code)
			require.Equal(t, errBroken.Error(), spans[0].Status.Description)
		})
	})
}
