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

package apis

import (
	"reflect"

	"dirpx.dev/dyncast/shape"
)

// Registry maps (interface, concrete type) pairs to Shapes.
// Lookups are on the hot path of every cast and must not block each other.
type Registry interface {
	// ID returns an identifier for this registry instance, for diagnostics.
	ID() string
	// Insert adds s. Implementations must be idempotent for an equal Shape
	// and reject a different Shape for the same key.
	Insert(s shape.Shape) error
	// Lookup returns the Shape registered for the pair, if any.
	Lookup(iface, concrete reflect.Type) (shape.Shape, bool)
	// Knows reports whether concrete is registered for any interface.
	Knows(concrete reflect.Type) bool
	// Implementors returns the concrete types registered for iface (order is unspecified).
	Implementors(iface reflect.Type) []reflect.Type
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered entries.
	Count() int
	// Reset clears all registered entries. Frozen registries ignore it.
	Reset()
	// Frozen reports whether the registry rejects further inserts.
	Frozen() bool
}

// Entry is a single (interface, concrete) association in a Registry snapshot.
type Entry struct {
	// Interface is the target interface type.
	Interface reflect.Type
	// Concrete is the implementing concrete type.
	Concrete reflect.Type
	// Shape is the captured descriptor.
	Shape shape.Shape
}
