/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package registry

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/shape"
)

var (
	// ErrInvalidShape is returned when the zero Shape is inserted.
	ErrInvalidShape = errors.New("dyncast(registry): invalid shape provided")
	// ErrConflictingRegistration indicates an attempt to re-register
	// a pair with a different Shape.
	ErrConflictingRegistration = errors.New("dyncast(registry): conflicting shape registration")
	// ErrFrozen is returned when inserting into a frozen registry.
	ErrFrozen = errors.New("dyncast(registry): registry is frozen")
)

// New constructs an empty, insertable Registry.
func New() apis.Registry {
	r := &registry{id: uuid.NewString()}
	r.t.Store(&tables{})
	return r
}

// registry is the dynamic Registry implementation backed by sync.Map.
// Reads never lock; writes are serialized by mu.
type registry struct {
	// id identifies this instance in logs.
	id string
	// mu guards write-side consistency and counter.
	mu sync.Mutex
	// t holds the current tables; Reset swaps in a fresh set.
	t atomic.Pointer[tables]
}

// tables is one generation of registry contents.
type tables struct {
	// shapes maps shape.Key to shape.Shape.
	shapes sync.Map
	// known maps concrete reflect.Type to struct{}.
	known sync.Map
	// count tracks the number of registered entries; guarded by registry.mu.
	count int
}

// ID returns the registry's instance identifier.
func (r *registry) ID() string { return r.id }

// Insert adds s. It is idempotent for an equal Shape.
func (r *registry) Insert(s shape.Shape) error {
	// Validate inputs early.
	if !s.Valid() {
		return ErrInvalidShape
	}
	k := s.Key()

	// Fast read path: idempotency / conflict check without locking.
	if old, ok := r.t.Load().shapes.Load(k); ok {
		return compare(old.(shape.Shape), s)
	}

	// Write path: guard with a mutex to keep counter consistent.
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	t := r.t.Load()
	if old, ok := t.shapes.Load(k); ok {
		return compare(old.(shape.Shape), s)
	}

	t.shapes.Store(k, s)
	t.known.Store(k.Concrete, struct{}{})
	t.count++
	return nil
}

// Lookup returns the Shape registered for the pair, if any.
func (r *registry) Lookup(iface, concrete reflect.Type) (shape.Shape, bool) {
	if iface == nil || concrete == nil {
		return shape.Shape{}, false
	}
	if v, ok := r.t.Load().shapes.Load(shape.Key{Interface: iface, Concrete: concrete}); ok {
		return v.(shape.Shape), true
	}
	return shape.Shape{}, false
}

// Knows reports whether concrete is registered for any interface.
func (r *registry) Knows(concrete reflect.Type) bool {
	if concrete == nil {
		return false
	}
	_, ok := r.t.Load().known.Load(concrete)
	return ok
}

// Implementors returns the concrete types registered for iface.
func (r *registry) Implementors(iface reflect.Type) []reflect.Type {
	var out []reflect.Type
	r.t.Load().shapes.Range(func(key, _ any) bool {
		if k := key.(shape.Key); k.Interface == iface {
			out = append(out, k.Concrete)
		}
		return true
	})
	return out
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *registry) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, r.Count())
	r.t.Load().shapes.Range(func(_, value any) bool {
		entries = append(entries, entryOf(value.(shape.Shape)))
		return true
	})
	return entries
}

// Count returns the number of registered entries.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t.Load().count
}

// Reset clears all registered entries.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t.Store(&tables{})
}

// Frozen always reports false.
func (r *registry) Frozen() bool { return false }

// compare implements the idempotency rule shared by all registries.
func compare(old, s shape.Shape) error {
	if old.Equal(s) {
		return nil // idempotent re-registration
	}
	return ErrConflictingRegistration
}

func entryOf(s shape.Shape) apis.Entry {
	return apis.Entry{Interface: s.Interface(), Concrete: s.Concrete(), Shape: s}
}
