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

package builder

import (
	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/registry"
	"dirpx.dev/dyncast/resolver"
	"dirpx.dev/dyncast/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds a fresh dynamic registry. If prev is provided, its
// entries are carried over so a config change never loses registrations.
// Frozen registries are not migrated: they are layered in front of the
// result by the caller.
func (b *builder) BuildRegistry(_ apis.Config, prev apis.Registry, _ any) apis.Registry {
	nreg := registry.New()
	if prev != nil && !prev.Frozen() {
		for _, e := range prev.Entries() {
			_ = nreg.Insert(e.Shape)
		}
	}
	return nreg
}

// BuildResolver builds the resolution chain:
//
//  1. the registry view (static table first, then dynamic registrations);
//  2. self-declaring concrete types (apis.Declarer);
//  3. extra strategies carried in ext, if ext is an apis.Strategy or
//     a []apis.Strategy;
//  4. implicit derivation, which only answers when cfg.Implicit is set.
func (b *builder) BuildResolver(_ apis.Config, view apis.Registry, _ apis.Resolver, ext any) apis.Resolver {
	strats := []apis.Strategy{
		strategy.NewRegistryStrategy(view),
		strategy.NewDeclarerStrategy(),
	}
	switch x := ext.(type) {
	case apis.Strategy:
		strats = append(strats, x)
	case []apis.Strategy:
		strats = append(strats, x...)
	}
	strats = append(strats, strategy.NewImplicitStrategy())
	return resolver.New(strats...)
}
