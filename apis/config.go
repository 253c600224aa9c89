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

// Config carries read-only knobs that influence resolution and casting.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MaxDepth limits how many container layers a cast walks before giving
	// up. Acts as a guard against pathological nesting.
	MaxDepth int

	// Implicit lets resolution derive a Shape for any concrete type that
	// implements the target interface, registered or not. When false, only
	// registered (or self-declared) pairs can be cast.
	Implicit bool

	// DistinguishUnknown reports a concrete type that is registered for no
	// interface at all separately from one that is registered, but not for
	// the requested interface.
	DistinguishUnknown bool
}
