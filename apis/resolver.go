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

package apis

import (
	"reflect"

	"dirpx.dev/dyncast/shape"
)

// Resolver coordinates strategies to find the Shape for a cast.
// Typical chain: Registry -> Declarer -> Implicit.
type Resolver interface {
	// Resolve returns the Shape that re-types values of concrete as iface.
	Resolve(iface, concrete reflect.Type, cfg Config) (shape.Shape, bool)

	// Known reports whether concrete is known to implement any interface.
	Known(concrete reflect.Type, cfg Config) bool
}
