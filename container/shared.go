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

package container

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"dirpx.dev/dyncast/shape"
)

// LayerShared names the Shared layer.
const LayerShared = "shared"

// counts is the state shared by all Shared and Weak handles of one value.
type counts struct {
	strong atomic.Int64
	weak   atomic.Int64
}

// Shared is an atomically reference-counted handle to a T.
//
// Copying a Shared copies the handle without touching the count; use Clone
// to take another reference. A cast hands the source's reference over to the
// result.
type Shared[T any] struct {
	rc *counts
	v  T
}

// NewShared returns the first strong handle to v.
func NewShared[T any](v T) Shared[T] {
	rc := &counts{}
	rc.strong.Store(1)
	return Shared[T]{rc: rc, v: v}
}

// Get returns the wrapped value.
func (s Shared[T]) Get() T { return s.v }

// Clone takes another strong reference.
func (s Shared[T]) Clone() Shared[T] {
	if s.rc != nil {
		s.rc.strong.Add(1)
	}
	return s
}

// Release drops one strong reference. It reports whether it was the last
// one. Releasing past zero is a no-op.
func (s Shared[T]) Release() bool {
	if s.rc == nil {
		return false
	}
	for {
		n := s.rc.strong.Load()
		if n <= 0 {
			return false
		}
		if s.rc.strong.CompareAndSwap(n, n-1) {
			return n == 1
		}
	}
}

// Count returns the number of strong references.
func (s Shared[T]) Count() int {
	if s.rc == nil {
		return 0
	}
	return int(s.rc.strong.Load())
}

// WeakCount returns the number of live weak handles.
func (s Shared[T]) WeakCount() int {
	if s.rc == nil {
		return 0
	}
	return int(s.rc.weak.Load())
}

// Downgrade returns a weak handle to the same value.
func (s Shared[T]) Downgrade() Weak[T] {
	if s.rc != nil {
		s.rc.weak.Add(1)
	}
	return Weak[T]{rc: s.rc, v: s.v}
}

// Same reports whether o shares s's reference counts.
func (s Shared[T]) Same(o Pointer) bool { return SameState(s, o) }

func (s Shared[T]) InnermostType() (reflect.Type, error) { return Innermost(s.v) }

func (Shared[T]) Layer() string { return LayerShared }

func (Shared[T]) InnerType() reflect.Type { return reflect.TypeFor[T]() }

func (s Shared[T]) Unwrap() Link {
	l := Link{Inner: s.v}
	if s.rc != nil {
		l.State = s.rc
	}
	return l
}

func (Shared[T]) Coerce(src Pointer, sh shape.Shape) (Pointer, error) {
	l := src.Unwrap()
	rc, err := stateOf[*counts](l)
	if err != nil {
		return nil, err
	}
	v, err := Rewrap[T](l.Inner, sh)
	if err != nil {
		return nil, err
	}
	return Shared[T]{rc: rc, v: v}, nil
}

// stateOf extracts a layer state of type S; a nil state yields the zero S.
func stateOf[S any](l Link) (S, error) {
	var zero S
	if l.State == nil {
		return zero, nil
	}
	s, ok := l.State.(S)
	if !ok {
		return zero, fmt.Errorf("%w: state %T", ErrLayerMismatch, l.State)
	}
	return s, nil
}
