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

import "dirpx.dev/dyncast/shape"

// Declarer is implemented by concrete types that declare their own
// implementations instead of being registered up front.
//
// Declarations is called on the zero value of the type, so it must not
// depend on the receiver. Declarations whose concrete type differs from the
// declaring type are ignored.
type Declarer interface {
	Declarations() []shape.Declaration
}
