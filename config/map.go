// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"strings"
)

// Map is an ordinary map[string]any but implements both the Source
// and Store interfaces.
type Map map[string]any

// EmptyKeyError is returned when setting a value without a key.
type EmptyKeyError struct {
	Value any
}

// Error implements the [builtin.error] interface.
func (e EmptyKeyError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key: %v", e.Value)
}

// UnexpectedKeyValueTypeError represents the situation when
// a user tries nesting a key under a key which already holds
// a non map value.
type UnexpectedKeyValueTypeError struct {
	Key          string
	ExpectedType string
}

// Error implements the [builtin.error] interface.
func (e UnexpectedKeyValueTypeError) Error() string {
	return fmt.Sprintf("expected key value to be a %s: %s", e.ExpectedType, e.Key)
}

// Set implements the Store interface. Nested maps are created for
// every dot separated segment of key.
func (m Map) Set(key string, value any) error {
	if key == "" {
		return EmptyKeyError{Value: value}
	}

	path := strings.Split(key, ".")
	cur := map[string]any(m)
	for i, name := range path[:len(path)-1] {
		next, ok := cur[name]
		if !ok {
			next = make(map[string]any)
			cur[name] = next
		}

		sub, ok := next.(map[string]any)
		if !ok {
			return UnexpectedKeyValueTypeError{
				Key:          strings.Join(path[:i+1], "."),
				ExpectedType: "map[string]any",
			}
		}
		cur = sub
	}
	cur[path[len(path)-1]] = value
	return nil
}

// Apply implements the Source interface. It recursively walks the underlying
// map to find key value pairs to set on the given store.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, "")
}

func walkMap(m map[string]any, store Store, prefix string) error {
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}

		sub, ok := v.(map[string]any)
		if ok {
			err := walkMap(sub, store, k)
			if err != nil {
				return err
			}
			continue
		}

		err := store.Set(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}
