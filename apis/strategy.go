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

// Strategy is a pluggable resolution step. A Resolver can chain multiple
// strategies in order (e.g., Registry -> Declarer -> Implicit).
type Strategy interface {
	// TryResolve attempts to find the Shape for (iface, concrete) according to cfg.
	// It returns (shape, true) if handled; otherwise (zero, false) to fall through.
	TryResolve(iface, concrete reflect.Type, cfg Config) (s shape.Shape, handled bool)

	// TryKnown reports whether this strategy knows concrete at all.
	TryKnown(concrete reflect.Type, cfg Config) bool
}
