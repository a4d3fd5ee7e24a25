// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package notify provides change notification for externally observable members.
//
// A type becomes a [Notifier] by embedding [Changes] and calling
// [Changes.RaiseChanged] from each mutator whose member value changed.
// Mutators usually go through a [Property], which binds the member name
// once where the member is declared:
//
//	type Counter struct {
//	    notify.Changes
//	    count *notify.Property[int]
//	}
//
//	func NewCounter() *Counter {
//	    c := &Counter{}
//	    c.count = notify.NewProperty(&c.Changes, "Count", 0)
//	    return c
//	}
//
//	func (c *Counter) Increment() error {
//	    return c.count.Set(c.count.Get() + 1)
//	}
//
// Observers are invoked synchronously, on the goroutine which raised the
// change, in the order they subscribed. The first observer to fail stops
// delivery and its failure is returned to the raiser.
//
// Observers must not raise changes which lead back to themselves without
// a terminating condition; delivery is plain recursion and nothing detects
// the cycle.
package notify
