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
	"reflect"
	"strings"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/shape"
)

// Stack layers regs into a single read-through Registry. Lookups consult
// the layers in order and return the first hit; inserts go to the last
// layer that is not frozen. Nil layers are ignored. A single layer is
// returned as is.
func Stack(regs ...apis.Registry) apis.Registry {
	out := make([]apis.Registry, 0, len(regs))
	for _, r := range regs {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return stack(out)
}

// stack is an immutable, order-preserving view over registries.
type stack []apis.Registry

func (s stack) ID() string {
	ids := make([]string, len(s))
	for i, r := range s {
		ids[i] = r.ID()
	}
	return strings.Join(ids, "+")
}

func (s stack) Insert(sh shape.Shape) error {
	// Reject conflicts with any layer, including frozen ones in front.
	if sh.Valid() {
		if old, ok := s.Lookup(sh.Interface(), sh.Concrete()); ok {
			return compare(old, sh)
		}
	}
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].Frozen() {
			return s[i].Insert(sh)
		}
	}
	return ErrFrozen
}

func (s stack) Lookup(iface, concrete reflect.Type) (shape.Shape, bool) {
	for _, r := range s {
		if sh, ok := r.Lookup(iface, concrete); ok {
			return sh, true
		}
	}
	return shape.Shape{}, false
}

func (s stack) Knows(concrete reflect.Type) bool {
	for _, r := range s {
		if r.Knows(concrete) {
			return true
		}
	}
	return false
}

func (s stack) Implementors(iface reflect.Type) []reflect.Type {
	seen := make(map[reflect.Type]struct{})
	var out []reflect.Type
	for _, r := range s {
		for _, t := range r.Implementors(iface) {
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}

// Entries returns one entry per key; earlier layers shadow later ones.
func (s stack) Entries() []apis.Entry {
	seen := make(map[shape.Key]struct{})
	var out []apis.Entry
	for _, r := range s {
		for _, e := range r.Entries() {
			k := e.Shape.Key()
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				out = append(out, e)
			}
		}
	}
	return out
}

func (s stack) Count() int { return len(s.Entries()) }

func (s stack) Reset() {
	for _, r := range s {
		r.Reset()
	}
}

func (s stack) Frozen() bool {
	for _, r := range s {
		if !r.Frozen() {
			return false
		}
	}
	return true
}
