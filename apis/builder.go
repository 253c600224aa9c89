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

// Builder assembles the Registry and Resolver of a dyncast snapshot.
//
// It is invoked whenever Config, the extension payload or the Builder
// itself changes, for every layer that is not pinned.
type Builder interface {
	// BuildRegistry returns the mutable registry for cfg. prev is the
	// registry being replaced (nil on first build); implementations may
	// carry its entries over. ext is the opaque extension payload.
	BuildRegistry(cfg Config, prev Registry, ext any) Registry
	// BuildResolver returns the resolver consulted by casts. view already
	// layers any frozen table in front of the mutable registry. prev is the
	// resolver being replaced, if any.
	BuildResolver(cfg Config, view Registry, prev Resolver, ext any) Resolver
}
