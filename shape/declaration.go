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

package shape

import (
	"fmt"
	"reflect"

	uref "dirpx.dev/dyncast/utils/reflect"
)

// Declaration is one "interface I is implemented by T" statement, checked
// when it is made. Registries consume declarations; a failed declaration
// carries its error instead of a Shape.
type Declaration struct {
	shape Shape
	err   error
}

// Declare states that T implements I. The claim is verified by reflection;
// a false claim yields a Declaration whose Shape method returns the error.
func Declare[I, T any]() Declaration {
	s, err := Of[I, T]()
	return Declaration{shape: s, err: err}
}

// Proven states that T implements I with a compile-time proof: conv must
// be the identity conversion
//
//	shape.Proven(func(q Qux) Bar { return q })
//
// which only compiles when Qux implements Bar. conv is called once with the
// zero T; if it returns a value of any other dynamic type the declaration
// is rejected.
func Proven[I, T any](conv func(T) I) Declaration {
	iface, concrete := reflect.TypeFor[I](), reflect.TypeFor[T]()
	if conv == nil {
		return Declaration{err: fmt.Errorf("%w: nil conversion for %s", ErrNilValue, iface)}
	}
	if err := check(iface, concrete); err != nil {
		return Declaration{err: err}
	}
	var zero T
	v := conv(zero)
	if got := reflect.TypeOf(any(v)); got != concrete {
		return Declaration{err: fmt.Errorf("%w: conversion returned %v, want %s", ErrConcreteMismatch, got, concrete)}
	}
	return Declaration{shape: Shape{key: Key{Interface: iface, Concrete: concrete}, tab: uref.TabOf(v)}}
}

// FromShape wraps an already captured Shape.
func FromShape(s Shape) Declaration {
	if !s.Valid() {
		return Declaration{err: ErrInvalidShape}
	}
	return Declaration{shape: s}
}

// Shape returns the declared Shape, or the error found when declaring.
func (d Declaration) Shape() (Shape, error) {
	return d.shape, d.err
}

// Key returns the declared pair; it is the zero Key for failed declarations.
func (d Declaration) Key() Key { return d.shape.key }
