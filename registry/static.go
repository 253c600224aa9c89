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
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/shape"
)

// NewStatic builds a frozen Registry holding shapes. Duplicate equal shapes
// are collapsed; a conflicting or invalid shape fails the whole build.
//
// The returned registry is read-only: plain maps, no locking.
func NewStatic(shapes ...shape.Shape) (apis.Registry, error) {
	r := &static{
		id:     uuid.NewString(),
		shapes: make(map[shape.Key]shape.Shape, len(shapes)),
		known:  make(map[reflect.Type]struct{}),
		impls:  make(map[reflect.Type][]reflect.Type),
	}
	for _, s := range shapes {
		if !s.Valid() {
			return nil, ErrInvalidShape
		}
		k := s.Key()
		if old, ok := r.shapes[k]; ok {
			if err := compare(old, s); err != nil {
				return nil, fmt.Errorf("%w: %s", err, k)
			}
			continue
		}
		r.shapes[k] = s
		r.known[k.Concrete] = struct{}{}
		r.impls[k.Interface] = append(r.impls[k.Interface], k.Concrete)
	}
	return r, nil
}

// static is a Registry that never changes after NewStatic returns.
type static struct {
	id     string
	shapes map[shape.Key]shape.Shape
	known  map[reflect.Type]struct{}
	impls  map[reflect.Type][]reflect.Type
}

func (r *static) ID() string { return r.id }

// Insert always fails with ErrFrozen.
func (r *static) Insert(shape.Shape) error { return ErrFrozen }

func (r *static) Lookup(iface, concrete reflect.Type) (shape.Shape, bool) {
	s, ok := r.shapes[shape.Key{Interface: iface, Concrete: concrete}]
	return s, ok
}

func (r *static) Knows(concrete reflect.Type) bool {
	_, ok := r.known[concrete]
	return ok
}

func (r *static) Implementors(iface reflect.Type) []reflect.Type {
	return append([]reflect.Type(nil), r.impls[iface]...)
}

func (r *static) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, len(r.shapes))
	for _, s := range r.shapes {
		entries = append(entries, entryOf(s))
	}
	return entries
}

func (r *static) Count() int { return len(r.shapes) }

// Reset is a no-op.
func (r *static) Reset() {}

func (r *static) Frozen() bool { return true }
