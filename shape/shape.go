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

// Package shape captures, per (interface, concrete type) pair, the runtime
// descriptor needed to rebuild an interface value over data of that
// concrete type, and performs the rebuild.
//
// A Shape is obtained without any instance of the concrete type: Of and For
// convert the zero value once and keep only the interface's first word
// (the method table for non-empty interfaces, the type word for any).
// Build then pairs that word with the data word of a live value.
//
// A Shape for (I, T) may only be combined with data whose dynamic type is T.
// Build checks the dynamic type it is handed; everything upstream of Build
// (registries, resolvers) relies on shapes being keyed by the exact pair
// they were captured for.
package shape

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	uref "dirpx.dev/dyncast/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("dyncast(shape): nil reflect.Type provided")
	// ErrNotInterface is returned when the target type is not an interface.
	ErrNotInterface = errors.New("dyncast(shape): target is not an interface type")
	// ErrNotConcrete is returned when the implementing type is itself an interface.
	ErrNotConcrete = errors.New("dyncast(shape): implementing type is an interface")
	// ErrNotImplemented is returned when the concrete type does not implement the interface.
	ErrNotImplemented = errors.New("dyncast(shape): concrete type does not implement interface")
	// ErrInterfaceMismatch is returned by Build when the shape targets another interface.
	ErrInterfaceMismatch = errors.New("dyncast(shape): shape built for another interface")
	// ErrConcreteMismatch is returned when a value's dynamic type is not the shape's concrete type.
	ErrConcreteMismatch = errors.New("dyncast(shape): value is not of the shape's concrete type")
	// ErrNilValue is returned by Build for a nil value.
	ErrNilValue = errors.New("dyncast(shape): nil value")
	// ErrInvalidShape is returned for the zero Shape.
	ErrInvalidShape = errors.New("dyncast(shape): invalid shape")
)

// Key identifies a registry entry: the target interface and the concrete
// type underlying the values to be re-typed.
type Key struct {
	// Interface is the target interface type.
	Interface reflect.Type
	// Concrete is the non-interface type of the underlying value.
	Concrete reflect.Type
}

// String renders the key as "Concrete as Interface".
func (k Key) String() string {
	return typeString(k.Concrete) + " as " + typeString(k.Interface)
}

// Shape is the type-erased method-table word of Interface for values of
// type Concrete. The zero Shape is invalid.
type Shape struct {
	key Key
	tab unsafe.Pointer
}

// Key returns the (interface, concrete) pair s was captured for.
func (s Shape) Key() Key { return s.key }

// Interface returns the target interface type.
func (s Shape) Interface() reflect.Type { return s.key.Interface }

// Concrete returns the concrete type s is valid for.
func (s Shape) Concrete() reflect.Type { return s.key.Concrete }

// Valid reports whether s was produced by Of, For or Proven.
func (s Shape) Valid() bool {
	return s.tab != nil && s.key.Interface != nil && s.key.Concrete != nil
}

// Equal reports whether s and o describe the same pair with the same table.
func (s Shape) Equal(o Shape) bool {
	return s.key == o.key && s.tab == o.tab
}

func (s Shape) String() string {
	if !s.Valid() {
		return "shape(invalid)"
	}
	return "shape(" + s.key.String() + ")"
}

// Of captures the Shape of interface I for concrete type T.
func Of[I, T any]() (Shape, error) {
	iface, concrete := reflect.TypeFor[I](), reflect.TypeFor[T]()
	if err := check(iface, concrete); err != nil {
		return Shape{}, err
	}
	var zero T
	v, ok := any(zero).(I)
	if !ok {
		// Unreachable after check; kept so a runtime disagreement surfaces as an error.
		return Shape{}, notImplemented(iface, concrete)
	}
	return Shape{key: Key{Interface: iface, Concrete: concrete}, tab: uref.TabOf(v)}, nil
}

// For captures the Shape of iface for concrete using reflection only.
func For(iface, concrete reflect.Type) (Shape, error) {
	if err := check(iface, concrete); err != nil {
		return Shape{}, err
	}
	tab, err := uref.TabFor(iface, concrete)
	if err != nil {
		return Shape{}, fmt.Errorf("%w: %w", ErrNotImplemented, err)
	}
	return Shape{key: Key{Interface: iface, Concrete: concrete}, tab: tab}, nil
}

// Build re-types v as an I using s.
//
// v is usually an interface value converted to any, possibly typed as a
// different interface; its data word is kept and paired with s's table.
func Build[I any](s Shape, v any) (I, error) {
	var zero I
	if !s.Valid() {
		return zero, ErrInvalidShape
	}
	if s.key.Interface != reflect.TypeFor[I]() {
		return zero, ErrInterfaceMismatch
	}
	if v == nil {
		return zero, ErrNilValue
	}
	if reflect.TypeOf(v) != s.key.Concrete {
		return zero, ErrConcreteMismatch
	}
	return uref.Compose[I](s.tab, uref.DataOf(v)), nil
}

func check(iface, concrete reflect.Type) error {
	switch {
	case iface == nil || concrete == nil:
		return ErrNilType
	case iface.Kind() != reflect.Interface:
		return fmt.Errorf("%w: %s", ErrNotInterface, iface)
	case concrete.Kind() == reflect.Interface:
		return fmt.Errorf("%w: %s", ErrNotConcrete, concrete)
	case !concrete.Implements(iface):
		return notImplemented(iface, concrete)
	}
	return nil
}

func notImplemented(iface, concrete reflect.Type) error {
	return fmt.Errorf("%w: %s does not implement %s", ErrNotImplemented, concrete, iface)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
