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
	"reflect"

	"dirpx.dev/dyncast/shape"
)

// LayerWeak names the Weak layer.
const LayerWeak = "weak"

// Weak is a non-owning handle obtained from Shared.Downgrade.
//
// A Weak expires once every strong handle has been released. Its innermost
// type can no longer be determined then, so an expired Weak cannot be cast.
type Weak[T any] struct {
	rc *counts
	v  T
}

// Upgrade takes a strong reference if the value is still alive.
func (w Weak[T]) Upgrade() (Shared[T], bool) {
	if w.rc == nil {
		return Shared[T]{}, false
	}
	for {
		n := w.rc.strong.Load()
		if n <= 0 {
			return Shared[T]{}, false
		}
		if w.rc.strong.CompareAndSwap(n, n+1) {
			return Shared[T]{rc: w.rc, v: w.v}, true
		}
	}
}

// Alive reports whether at least one strong handle remains.
func (w Weak[T]) Alive() bool {
	return w.rc != nil && w.rc.strong.Load() > 0
}

// Release drops the weak handle. Releasing past zero is a no-op.
func (w Weak[T]) Release() {
	if w.rc == nil {
		return
	}
	for {
		n := w.rc.weak.Load()
		if n <= 0 || w.rc.weak.CompareAndSwap(n, n-1) {
			return
		}
	}
}

func (w Weak[T]) InnermostType() (reflect.Type, error) {
	if !w.Alive() {
		return nil, ErrExpired
	}
	return Innermost(w.v)
}

func (Weak[T]) Layer() string { return LayerWeak }

func (Weak[T]) InnerType() reflect.Type { return reflect.TypeFor[T]() }

func (w Weak[T]) Unwrap() Link {
	l := Link{Inner: w.v}
	if w.rc != nil {
		l.State = w.rc
	}
	return l
}

func (Weak[T]) Coerce(src Pointer, sh shape.Shape) (Pointer, error) {
	l := src.Unwrap()
	rc, err := stateOf[*counts](l)
	if err != nil {
		return nil, err
	}
	v, err := Rewrap[T](l.Inner, sh)
	if err != nil {
		return nil, err
	}
	return Weak[T]{rc: rc, v: v}, nil
}
