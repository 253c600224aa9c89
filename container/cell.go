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
	"sync"

	"dirpx.dev/dyncast/shape"
)

// LayerCell names the Cell layer.
const LayerCell = "cell"

// cellCore is the lock shared by all copies of a Cell, including re-typed ones.
type cellCore struct {
	mu sync.RWMutex
}

// Cell guards access to a T with a reader/writer lock.
//
// Cell does not make the held value replaceable: mutation goes through the
// value itself, so T is normally an interface over a pointer type.
type Cell[T any] struct {
	c *cellCore
	v T
}

// NewCell returns a Cell holding v.
func NewCell[T any](v T) Cell[T] {
	return Cell[T]{c: &cellCore{}, v: v}
}

// Borrow takes a shared borrow. The returned func ends it and is safe to
// call more than once.
func (c Cell[T]) Borrow() (T, func()) {
	if c.c == nil {
		return c.v, func() {}
	}
	c.c.mu.RLock()
	return c.v, sync.OnceFunc(c.c.mu.RUnlock)
}

// BorrowMut takes an exclusive borrow. The returned func ends it and is
// safe to call more than once.
func (c Cell[T]) BorrowMut() (T, func()) {
	if c.c == nil {
		return c.v, func() {}
	}
	c.c.mu.Lock()
	return c.v, sync.OnceFunc(c.c.mu.Unlock)
}

// With calls fn under a shared borrow.
func (c Cell[T]) With(fn func(T)) {
	v, release := c.Borrow()
	defer release()
	fn(v)
}

// Update calls fn under an exclusive borrow.
func (c Cell[T]) Update(fn func(T)) {
	v, release := c.BorrowMut()
	defer release()
	fn(v)
}

// Same reports whether o shares c's lock.
func (c Cell[T]) Same(o Pointer) bool { return SameState(c, o) }

// InnermostType fails with ErrBorrowed while the cell is exclusively borrowed.
func (c Cell[T]) InnermostType() (reflect.Type, error) {
	if c.c != nil {
		if !c.c.mu.TryRLock() {
			return nil, ErrBorrowed
		}
		defer c.c.mu.RUnlock()
	}
	return Innermost(c.v)
}

func (Cell[T]) Layer() string { return LayerCell }

func (Cell[T]) InnerType() reflect.Type { return reflect.TypeFor[T]() }

func (c Cell[T]) Unwrap() Link {
	l := Link{Inner: c.v}
	if c.c != nil {
		l.State = c.c
	}
	return l
}

func (Cell[T]) Coerce(src Pointer, sh shape.Shape) (Pointer, error) {
	l := src.Unwrap()
	core, err := stateOf[*cellCore](l)
	if err != nil {
		return nil, err
	}
	v, err := Rewrap[T](l.Inner, sh)
	if err != nil {
		return nil, err
	}
	return Cell[T]{c: core, v: v}, nil
}
