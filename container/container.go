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

// Package container defines how wrapper layers around an interface value
// take part in a cast.
//
// A container is either a plain interface value (the leaf) or a layer type
// implementing Pointer around another container. Casting a container walks
// its layers down to the leaf, re-types the leaf and rebuilds every layer
// around it from the original layer's state, so reference counts and locks
// are shared between the source and the result.
//
// Layers are value types. The shared part of a layer lives behind a pointer
// (its state); the layer struct itself only holds that pointer and the inner
// container.
package container

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/dyncast/shape"
	uref "dirpx.dev/dyncast/utils/reflect"
)

var (
	// ErrNilReference is returned when the leaf interface value is nil.
	ErrNilReference = errors.New("dyncast(container): nil interface value")
	// ErrNotCoercible is returned for types that are neither interfaces nor layers.
	ErrNotCoercible = errors.New("dyncast(container): type is neither an interface nor a container layer")
	// ErrLayerMismatch indicates that source and target wrapper stacks differ.
	ErrLayerMismatch = errors.New("dyncast(container): wrapper layers differ")
	// ErrTooDeep is returned when a wrapper stack exceeds the configured depth.
	ErrTooDeep = errors.New("dyncast(container): wrapper stack too deep")
	// ErrExpired is returned for a weak handle whose strong handles are all released.
	ErrExpired = errors.New("dyncast(container): weak reference expired")
	// ErrBorrowed is returned for a cell that is exclusively borrowed.
	ErrBorrowed = errors.New("dyncast(container): cell is exclusively borrowed")
)

// Coercible is implemented by every value whose innermost concrete type can
// be determined at run time.
type Coercible interface {
	// InnermostType returns the dynamic type of the leaf interface value.
	InnermostType() (reflect.Type, error)
}

// Pointer is a wrapper layer.
type Pointer interface {
	Coercible
	// Layer names the kind of wrapper. Source and target layers must agree.
	Layer() string
	// InnerType is the static type of the wrapped container.
	InnerType() reflect.Type
	// Unwrap exposes the layer's shared state and the wrapped container.
	Unwrap() Link
	// Coerce is called on the zero value of the target layer type. It returns
	// a target layer sharing src's state, around src's inner container
	// rebuilt with s.
	Coerce(src Pointer, s shape.Shape) (Pointer, error)
}

// Link is what a layer hands to its re-typed counterpart.
type Link struct {
	// State is the layer's shared state, nil for a zero layer.
	State any
	// Inner is the wrapped container.
	Inner any
}

var pointerT = reflect.TypeFor[Pointer]()

// Innermost returns the dynamic type at the bottom of v.
func Innermost[T any](v T) (reflect.Type, error) {
	if uref.IsInterface[T]() {
		t := reflect.TypeOf(any(v))
		if t == nil {
			return nil, ErrNilReference
		}
		return t, nil
	}
	c, ok := any(v).(Coercible)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCoercible, reflect.TypeFor[T]())
	}
	return c.InnermostType()
}

// Rewrap rebuilds inner as a T whose leaf is re-typed with s.
//
// When T is an interface, inner must be the leaf value and s the Shape of
// (T, dynamic type of inner). Otherwise inner must be a layer of the same
// kind as T.
func Rewrap[T any](inner any, s shape.Shape) (T, error) {
	var zero T
	if uref.IsInterface[T]() {
		return shape.Build[T](s, inner)
	}
	dst, ok := any(zero).(Pointer)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotCoercible, reflect.TypeFor[T]())
	}
	src, ok := inner.(Pointer)
	if !ok || src.Layer() != dst.Layer() {
		return zero, fmt.Errorf("%w: %T into %s", ErrLayerMismatch, inner, dst.Layer())
	}
	out, err := dst.Coerce(src, s)
	if err != nil {
		return zero, err
	}
	res, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T is not %s", ErrLayerMismatch, out, reflect.TypeFor[T]())
	}
	return res, nil
}

// Stack describes the wrapper stack of t: the layer names from outermost to
// innermost and the leaf interface type. At most max layers are walked.
func Stack(t reflect.Type, max int) ([]string, reflect.Type, error) {
	var layers []string
	for {
		if t == nil {
			return nil, nil, fmt.Errorf("%w: nil type", ErrNotCoercible)
		}
		if t.Kind() == reflect.Interface {
			return layers, t, nil
		}
		if len(layers) >= max {
			return nil, nil, fmt.Errorf("%w: more than %d layers", ErrTooDeep, max)
		}
		// Pointer-kinded layers would be probed through a nil receiver.
		if t.Kind() == reflect.Pointer || !t.Implements(pointerT) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotCoercible, t)
		}
		p := reflect.Zero(t).Interface().(Pointer)
		layers = append(layers, p.Layer())
		t = p.InnerType()
	}
}

// Match checks that to and from wrap their leaves in the same layers and
// returns the leaf interface of to.
func Match(to, from reflect.Type, max int) (reflect.Type, error) {
	toLayers, leaf, err := Stack(to, max)
	if err != nil {
		return nil, err
	}
	fromLayers, _, err := Stack(from, max)
	if err != nil {
		return nil, err
	}
	if len(toLayers) != len(fromLayers) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrLayerMismatch, to, from)
	}
	for i := range toLayers {
		if toLayers[i] != fromLayers[i] {
			return nil, fmt.Errorf("%w: %s vs %s", ErrLayerMismatch, toLayers[i], fromLayers[i])
		}
	}
	return leaf, nil
}

// SameState reports whether a and b are layers over the same shared state.
func SameState(a, b Pointer) bool {
	if a == nil || b == nil {
		return false
	}
	sa, sb := a.Unwrap().State, b.Unwrap().State
	return sa != nil && sa == sb
}
