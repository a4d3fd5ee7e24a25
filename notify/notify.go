// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package notify

import (
	"fmt"
	"slices"
	"sync"

	"github.com/z5labs/keystone/internal/try"
)

// Observer is called with the name of the member whose value changed.
type Observer func(member string) error

// Subscription identifies a subscribed Observer. The zero value never
// identifies a subscription.
type Subscription struct {
	id uint64
}

// Raiser is implemented by anything which can announce a member change.
type Raiser interface {
	RaiseChanged(member string) error
}

// Notifier represents anything which notifies observers of member value changes.
type Notifier interface {
	Raiser

	Subscribe(Observer) Subscription
	Unsubscribe(Subscription)
}

// ObserverError is returned by RaiseChanged when an Observer fails.
type ObserverError struct {
	Member string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e ObserverError) Error() string {
	return fmt.Sprintf("observer failed handling change to %q: %s", e.Member, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ObserverError) Unwrap() error {
	return e.Cause
}

type subscriber struct {
	id       uint64
	observer Observer
}

// Changes implements Notifier and is meant to be embedded. The zero value
// is ready to use. Changes must not be copied after first use.
type Changes struct {
	mu          sync.Mutex
	lastID      uint64
	subscribers []subscriber
}

// Subscribe registers o to be called on every subsequent change.
// A nil Observer is ignored and the zero Subscription is returned.
func (c *Changes) Subscribe(o Observer) Subscription {
	if o == nil {
		return Subscription{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastID++
	c.subscribers = append(c.subscribers, subscriber{
		id:       c.lastID,
		observer: o,
	})
	return Subscription{id: c.lastID}
}

// Unsubscribe removes the Observer identified by s. Unknown subscriptions
// are ignored.
func (c *Changes) Unsubscribe(s Subscription) {
	if s.id == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// a fresh slice keeps snapshots taken by in flight RaiseChanged calls intact
	c.subscribers = slices.DeleteFunc(slices.Clone(c.subscribers), func(sub subscriber) bool {
		return sub.id == s.id
	})
}

// Len returns the number of subscribed observers.
func (c *Changes) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribers)
}

// RaiseChanged calls every subscribed Observer with member, in the order
// they subscribed. Delivery stops at the first Observer which returns an
// error or panics and that failure is returned as an [ObserverError].
//
// Observers subscribed or unsubscribed while RaiseChanged is running do not
// affect the current call.
func (c *Changes) RaiseChanged(member string) error {
	c.mu.Lock()
	subs := c.subscribers
	c.mu.Unlock()

	for _, sub := range subs {
		err := try.Call(func() error {
			return sub.observer(member)
		})
		if err != nil {
			return ObserverError{
				Member: member,
				Cause:  err,
			}
		}
	}
	return nil
}
