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

package dyncast

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/builder"
	"dirpx.dev/dyncast/config"
	"dirpx.dev/dyncast/registry"
)

// init initializes the global state.
func init() {
	s := &state{cfg: config.DefaultConfig(), bld: builder.New()}
	s.reg = s.bld.BuildRegistry(s.cfg, nil, nil)
	s.res = s.bld.BuildResolver(s.cfg, s.view(), nil, nil)
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("dyncast: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("dyncast: builder returned nil resolver")
)

// SetAll explicitly sets all global state components.
//
// Nil arguments leave the corresponding component unchanged (or rebuilt,
// for the registry and resolver), except for ext which is always replaced.
// A non-nil reg or res is pinned. The frozen table is kept.
func SetAll(cfg *apis.Config, ext any, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := old.clone()
	if cfg != nil {
		next.cfg = *cfg
	}
	next.ext = ext
	if bld != nil {
		next.bld = bld
	}

	if reg != nil {
		next.reg, next.preg = reg, true
	} else {
		next.reg, next.preg = next.bld.BuildRegistry(next.cfg, old.reg, next.ext), false
	}
	if res != nil {
		next.res, next.pres = res, true
	} else {
		next.res, next.pres = next.bld.BuildResolver(next.cfg, next.view(), old.res, next.ext), false
	}

	publish(next)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg and rebuilds every
// layer that is not pinned.
func SetConfig(cfg apis.Config) {
	rebuild(func(s *state) { s.cfg = cfg })
}

// Registry returns the global mutable registry. Frozen declarations live
// in Static and are not part of it.
func Registry() apis.Registry {
	return st.Load().reg
}

// Static returns the frozen table installed by Freeze, or nil.
func Static() apis.Registry {
	return st.Load().static
}

// SetRegistry sets and pins the global registry. The resolver is rebuilt
// over it unless pinned.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := old.clone()
	next.reg, next.preg = reg, true
	if !old.pres {
		next.res = next.bld.BuildResolver(next.cfg, next.view(), old.res, next.ext)
	}
	publish(next)
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver sets and pins the global resolver.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := st.Load().clone()
	next.res, next.pres = res, true
	publish(next)
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder to b and rebuilds every layer that is
// not pinned.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}
	rebuild(func(s *state) { s.bld = b })
}

// SetExt replaces the extension payload and rebuilds non-pinned layers via
// the builder. The default builder accepts an apis.Strategy or a
// []apis.Strategy and chains it before implicit derivation.
func SetExt[T any](ext T) {
	rebuild(func(s *state) { s.ext = ext })
}

// ExtAs returns the global extension payload as type T.
func ExtAs[T any]() (T, bool) {
	ext, ok := st.Load().ext.(T)
	return ext, ok
}

// IsRegistryPinned returns whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry stops the global registry from being rebuilt.
func PinRegistry() {
	pin(func(s *state) { s.preg = true })
}

// UnpinRegistry lets the global registry be rebuilt again.
func UnpinRegistry() {
	pin(func(s *state) { s.preg = false })
}

// IsResolverPinned returns whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver stops the global resolver from being rebuilt.
func PinResolver() {
	pin(func(s *state) { s.pres = true })
}

// UnpinResolver lets the global resolver be rebuilt again.
func UnpinResolver() {
	pin(func(s *state) { s.pres = false })
}

// rebuild applies mut to a copy of the current state, rebuilds the layers
// that are not pinned and publishes the result.
func rebuild(mut func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := old.clone()
	mut(next)

	if !old.preg {
		next.reg = next.bld.BuildRegistry(next.cfg, old.reg, next.ext)
	}
	if !old.pres {
		next.res = next.bld.BuildResolver(next.cfg, next.view(), old.res, next.ext)
	}
	publish(next)
}

// pin flips pin flags without rebuilding anything.
func pin(mut func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := st.Load().clone()
	mut(next)
	st.Store(next)
}

// publish validates s and stores it. Callers hold buildMu.
func publish(s *state) {
	if s.reg == nil {
		panic(ErrNilRegistry)
	}
	if s.res == nil {
		panic(ErrNilResolver)
	}
	st.Store(s)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots. Register holds it shared while inserting, so a
// rebuild never copies a registry that is still being written to.
var buildMu sync.RWMutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// ext is the opaque extension payload handed to the builder.
	ext any
	// reg is the mutable registry.
	reg apis.Registry
	// static is the frozen table installed by Freeze, nil before.
	static apis.Registry
	// res is the resolver consulted by casts.
	res apis.Resolver
	// bld builds reg and res.
	bld apis.Builder
	// preg indicates whether reg is pinned.
	preg bool
	// pres indicates whether res is pinned.
	pres bool
}

// clone returns a shallow copy of s for a writer to modify.
func (s *state) clone() *state {
	c := *s
	return &c
}

// view layers the frozen table in front of the mutable registry.
func (s *state) view() apis.Registry {
	return registry.Stack(s.static, s.reg)
}
