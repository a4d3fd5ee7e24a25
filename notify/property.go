// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package notify

// Property is a member value bound to its name and owner. Set raises the
// change on the owner using that name, so mutators never repeat it.
//
// Property is not safe for concurrent mutation.
type Property[T comparable] struct {
	owner Raiser
	name  string
	value T
}

// NewProperty returns a Property named name holding initial. Changes are
// raised on owner.
func NewProperty[T comparable](owner Raiser, name string, initial T) *Property[T] {
	return &Property[T]{
		owner: owner,
		name:  name,
		value: initial,
	}
}

// Name returns the member name changes are raised with.
func (p *Property[T]) Name() string {
	return p.name
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	return p.value
}

// Set stores v and, if it differs from the current value, raises a change
// for the property. Observers see the new value.
func (p *Property[T]) Set(v T) error {
	if p.value == v {
		return nil
	}
	p.value = v
	return p.owner.RaiseChanged(p.name)
}
