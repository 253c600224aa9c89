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

package strategy

import (
	"reflect"
	"sync"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/shape"
)

// NewDeclarerStrategy creates an apis.Strategy that asks concrete types
// implementing apis.Declarer for their own declarations.
func NewDeclarerStrategy() apis.Strategy {
	return &declarerStrategy{}
}

// declarerStrategy memoizes one table per concrete type. A type's
// declarations are collected the first time it is seen and never again.
type declarerStrategy struct {
	tables sync.Map // key: reflect.Type, val: map[reflect.Type]shape.Shape
}

// Ensure declarerStrategy implements apis.Strategy.
var _ apis.Strategy = (*declarerStrategy)(nil)

var declarerT = reflect.TypeFor[apis.Declarer]()

// TryResolve returns the Shape concrete declared for iface, if any.
func (s *declarerStrategy) TryResolve(iface, concrete reflect.Type, _ apis.Config) (shape.Shape, bool) {
	if iface == nil || concrete == nil {
		return shape.Shape{}, false
	}
	sh, ok := s.table(concrete)[iface]
	return sh, ok
}

// TryKnown reports whether concrete declared at least one implementation.
func (s *declarerStrategy) TryKnown(concrete reflect.Type, _ apis.Config) bool {
	if concrete == nil {
		return false
	}
	return len(s.table(concrete)) > 0
}

func (s *declarerStrategy) table(concrete reflect.Type) map[reflect.Type]shape.Shape {
	if v, ok := s.tables.Load(concrete); ok {
		return v.(map[reflect.Type]shape.Shape)
	}
	v, _ := s.tables.LoadOrStore(concrete, collect(concrete))
	return v.(map[reflect.Type]shape.Shape)
}

// collect calls Declarations on a zero receiver of concrete and keeps only
// the valid declarations about concrete itself.
func collect(concrete reflect.Type) (out map[reflect.Type]shape.Shape) {
	out = map[reflect.Type]shape.Shape{}
	if concrete.Kind() == reflect.Interface || !concrete.Implements(declarerT) {
		return out
	}

	// A nil pointer receiver would panic on value-receiver methods.
	var recv reflect.Value
	if concrete.Kind() == reflect.Pointer {
		recv = reflect.New(concrete.Elem())
	} else {
		recv = reflect.Zero(concrete)
	}

	defer func() {
		if recover() != nil {
			out = map[reflect.Type]shape.Shape{}
		}
	}()

	for _, d := range recv.Interface().(apis.Declarer).Declarations() {
		sh, err := d.Shape()
		if err != nil || sh.Concrete() != concrete {
			continue
		}
		out[sh.Interface()] = sh
	}
	return out
}
