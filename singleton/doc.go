// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package singleton provides lazily constructed, process wide instances
// keyed by their concrete type.
//
// A type opts in by implementing Init on its pointer receiver:
//
//	type Registry struct {
//	    entries map[string]string
//	}
//
//	func (r *Registry) Init() error {
//	    r.entries = make(map[string]string)
//	    return nil
//	}
//
// Every caller of [Instance] then shares the same *Registry:
//
//	reg, err := singleton.Instance[Registry]()
//
// The instance is constructed on first access. Concurrent first callers
// block until construction completes and all of them observe the same
// pointer. If Init fails, the failure is returned to every caller for the
// lifetime of the process; construction is never retried.
package singleton
