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

package registry_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/dyncast/registry"
	"dirpx.dev/dyncast/shape"
)

func TestStatic_LookupAndFrozen(t *testing.T) {
	s1, s2 := mustShape[Namer, T1](t), mustShape[Sizer, T2](t)
	reg, err := registry.NewStatic(s1, s2, s1)
	require.NoError(t, err)

	assert.True(t, reg.Frozen())
	assert.Equal(t, 2, reg.Count())
	assert.Len(t, reg.Entries(), 2)

	got, ok := reg.Lookup(namerT, reflect.TypeFor[T1]())
	require.True(t, ok)
	assert.True(t, got.Equal(s1))
	assert.True(t, reg.Knows(reflect.TypeFor[T2]()))
	assert.False(t, reg.Knows(reflect.TypeFor[T3]()))
	assert.Equal(t, []reflect.Type{reflect.TypeFor[T2]()}, reg.Implementors(sizerT))

	assert.ErrorIs(t, reg.Insert(mustShape[Namer, T3](t)), registry.ErrFrozen)

	reg.Reset()
	assert.Equal(t, 2, reg.Count(), "Reset must not clear a static registry")
}

func TestStatic_RejectsInvalid(t *testing.T) {
	_, err := registry.NewStatic(mustShape[Namer, T1](t), shape.Shape{})
	assert.ErrorIs(t, err, registry.ErrInvalidShape)
}

func TestStatic_ImplementorsIsACopy(t *testing.T) {
	reg, err := registry.NewStatic(mustShape[Sizer, T1](t))
	require.NoError(t, err)

	impls := reg.Implementors(sizerT)
	impls[0] = nil
	assert.Equal(t, reflect.TypeFor[T1](), reg.Implementors(sizerT)[0])
}
