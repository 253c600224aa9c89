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

package reflect

import (
	"errors"
	"reflect"
	"unsafe"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectNotInterface indicates that an interface type was required.
	ErrReflectNotInterface = errors.New("reflect: type is not an interface")
	// ErrReflectInterface indicates that a non-interface (concrete) type was required.
	ErrReflectInterface = errors.New("reflect: type is an interface")
	// ErrReflectNotAssignable indicates that a concrete type does not implement an interface.
	ErrReflectNotAssignable = errors.New("reflect: type does not implement interface")
)

// words mirrors the runtime layout shared by every interface value.
// For non-empty interfaces tab is the itab; for any it is the type word.
// data is the same in both cases, which is what makes re-typing possible.
type words struct {
	tab  unsafe.Pointer
	data unsafe.Pointer
}

// IsInterface reports whether T is an interface type.
func IsInterface[T any]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Interface
}

// DataOf returns the data word of v.
//
// Converting a non-empty interface to any keeps the data word unchanged, so
// the result is also the data word of whatever interface v was converted from.
func DataOf(v any) unsafe.Pointer {
	return (*words)(unsafe.Pointer(&v)).data
}

// TabOf returns the first word of the interface value v, or nil when I is
// not an interface type.
func TabOf[I any](v I) unsafe.Pointer {
	if !IsInterface[I]() {
		return nil
	}
	return (*words)(unsafe.Pointer(&v)).tab
}

// TabFor returns the first word of an iface-typed value holding the zero
// value of concrete. It is the reflect-only counterpart of TabOf.
func TabFor(iface, concrete reflect.Type) (unsafe.Pointer, error) {
	if iface == nil || concrete == nil {
		return nil, ErrReflectNilType
	}
	if iface.Kind() != reflect.Interface {
		return nil, ErrReflectNotInterface
	}
	if concrete.Kind() == reflect.Interface {
		return nil, ErrReflectInterface
	}
	if !concrete.Implements(iface) {
		return nil, ErrReflectNotAssignable
	}
	slot := reflect.New(iface)
	slot.Elem().Set(reflect.Zero(concrete))
	return (*words)(slot.UnsafePointer()).tab, nil
}

// Compose builds an I from a tab word and a data word.
//
// The caller guarantees that tab was captured from an I holding a value of
// the same dynamic type as the value data belongs to. Nothing here can
// verify that; a mismatched pair yields an interface whose method table does
// not describe its data.
func Compose[I any](tab, data unsafe.Pointer) I {
	var out I
	if !IsInterface[I]() {
		return out
	}
	w := (*words)(unsafe.Pointer(&out))
	w.tab = tab
	w.data = data
	return out
}
