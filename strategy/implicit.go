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

// NewImplicitStrategy creates an apis.Strategy that derives Shapes by
// reflection for any pair where the concrete type implements the interface.
// It only answers when Config.Implicit is set.
func NewImplicitStrategy() apis.Strategy {
	return implicitStrategy{}
}

// implicitStrategy is the universal fallback. It trades the explicit
// registration contract for a reflection check on first use of each pair.
type implicitStrategy struct{}

// Ensure implicitStrategy implements apis.Strategy.
var _ apis.Strategy = (*implicitStrategy)(nil)

// shapeCache caches derived shapes by pair; invalid shapes record misses.
var shapeCache sync.Map // key: shape.Key, val: shape.Shape

// TryResolve derives the Shape for (iface, concrete) when cfg.Implicit is on.
func (implicitStrategy) TryResolve(iface, concrete reflect.Type, cfg apis.Config) (shape.Shape, bool) {
	if !cfg.Implicit || iface == nil || concrete == nil {
		return shape.Shape{}, false
	}
	sh := byPair(shape.Key{Interface: iface, Concrete: concrete})
	return sh, sh.Valid()
}

// TryKnown treats every concrete type as known in implicit mode.
func (implicitStrategy) TryKnown(concrete reflect.Type, cfg apis.Config) bool {
	return cfg.Implicit && concrete != nil
}

// byPair resolves the Shape for k with memoization.
func byPair(k shape.Key) shape.Shape {
	if v, ok := shapeCache.Load(k); ok {
		return v.(shape.Shape)
	}
	sh, err := shape.For(k.Interface, k.Concrete)
	if err != nil {
		sh = shape.Shape{}
	}
	shapeCache.Store(k, sh)
	return sh
}
