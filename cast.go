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
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/config"
	"dirpx.dev/dyncast/container"
	"dirpx.dev/dyncast/metric"
	"dirpx.dev/dyncast/resolver"
	"dirpx.dev/dyncast/shape"
	"dirpx.dev/dyncast/strategy"
)

var (
	// ErrNotImplemented is returned when the concrete type behind a
	// container is not registered as implementing the target interface.
	ErrNotImplemented = errors.New("dyncast: target interface not implemented")
	// ErrUnknownConcrete refines ErrNotImplemented for a concrete type that
	// is not registered for any interface at all.
	ErrUnknownConcrete = fmt.Errorf("%w: concrete type unknown", ErrNotImplemented)
	// ErrUnknownInterface refines ErrNotImplemented for a target interface
	// that has no registered implementors at all.
	ErrUnknownInterface = fmt.Errorf("%w: no implementors registered", ErrNotImplemented)
	// ErrIndeterminate is returned when the concrete type behind a container
	// cannot be determined.
	ErrIndeterminate = errors.New("dyncast: concrete type indeterminate")
)

// CastError is returned by a failed cast. It hands back the container the
// cast was attempted on, untouched.
type CastError[P any] struct {
	// Err is the reason the cast failed.
	Err error
	// Pointer is the original container.
	Pointer P
}

func (e *CastError[P]) Error() string {
	return fmt.Sprintf("dyncast: cast of %s failed: %v", reflect.TypeFor[P](), e.Err)
}

func (e *CastError[P]) Unwrap() error { return e.Err }

// Cast re-types p so that its innermost interface value has the leaf
// interface type of To, keeping every wrapper layer and its shared state.
// It uses the global resolver and configuration.
//
//	var foo Foo = Qux(123)
//	bar, err := dyncast.Cast[container.Shared[Bar]](container.NewShared(foo))
//
// To and From must wrap their leaves in the same layers. On failure the
// returned error is a *CastError[From] carrying p.
func Cast[To, From any](p From) (To, error) {
	s := st.Load()
	return cast[To](s.res, s.view(), s.cfg, p)
}

// CastWith is Cast against reg alone. The configuration is built from opts
// on top of the defaults.
//
//	bar, err := dyncast.CastWith[Bar](reg, foo, config.WithDistinguishUnknown(false))
func CastWith[To, From any](reg apis.Registry, p From, opts ...config.Option) (To, error) {
	return cast[To](resolver.New(strategy.NewRegistryStrategy(reg)), reg, config.NewConfig(opts...), p)
}

// Implements reports whether the concrete type behind p is registered as
// implementing I, using the global resolver.
func Implements[I, P any](p P) (bool, error) {
	s := st.Load()
	return implements[I](s.res, s.cfg, p)
}

// ImplementsWith is Implements against reg alone, configured by opts.
func ImplementsWith[I, P any](reg apis.Registry, p P, opts ...config.Option) (bool, error) {
	return implements[I](resolver.New(strategy.NewRegistryStrategy(reg)), config.NewConfig(opts...), p)
}

// cast runs the cast against res. reg is only consulted to refine the
// reason of a miss and may be nil.
func cast[To, From any](res apis.Resolver, reg apis.Registry, cfg apis.Config, p From) (To, error) {
	var zero To
	m := Metrics()

	to, from := reflect.TypeFor[To](), reflect.TypeFor[From]()
	if to == from {
		m.ObserveCast(metric.ResultIdentity)
		out, _ := any(p).(To)
		return out, nil
	}

	iface, err := container.Match(to, from, cfg.MaxDepth)
	if err != nil {
		m.ObserveCast(metric.ResultMismatch)
		return zero, &CastError[From]{Err: err, Pointer: p}
	}

	concrete, err := container.Innermost(p)
	if err != nil {
		m.ObserveCast(metric.ResultIndeterminate)
		return zero, &CastError[From]{Err: fmt.Errorf("%w: %w", ErrIndeterminate, err), Pointer: p}
	}

	sh, ok := res.Resolve(iface, concrete, cfg)
	m.ObserveLookup(ok)
	if !ok {
		result, reason := missReason(res, reg, cfg, iface, concrete)
		m.ObserveCast(result)
		Logger().Debug("cast missed",
			zap.Stringer("interface", iface),
			zap.Stringer("concrete", concrete),
			zap.Error(reason),
		)
		return zero, &CastError[From]{Err: fmt.Errorf("%w: %s", reason, shape.Key{Interface: iface, Concrete: concrete}), Pointer: p}
	}

	out, err := container.Rewrap[To](any(p), sh)
	if err != nil {
		m.ObserveCast(metric.ResultMismatch)
		return zero, &CastError[From]{Err: err, Pointer: p}
	}
	m.ObserveCast(metric.ResultOK)
	return out, nil
}

// missReason classifies a failed lookup. Without DistinguishUnknown, and in
// implicit mode, every miss is ErrNotImplemented.
func missReason(res apis.Resolver, reg apis.Registry, cfg apis.Config, iface, concrete reflect.Type) (string, error) {
	switch {
	case !cfg.DistinguishUnknown || cfg.Implicit:
		return metric.ResultNotImplemented, ErrNotImplemented
	case reg != nil && len(reg.Implementors(iface)) == 0:
		return metric.ResultUnknownIface, ErrUnknownInterface
	case !res.Known(concrete, cfg):
		return metric.ResultUnknown, ErrUnknownConcrete
	}
	return metric.ResultNotImplemented, ErrNotImplemented
}

func implements[I, P any](res apis.Resolver, cfg apis.Config, p P) (bool, error) {
	iface := reflect.TypeFor[I]()
	if iface.Kind() != reflect.Interface {
		return false, fmt.Errorf("%w: %s", shape.ErrNotInterface, iface)
	}
	concrete, err := container.Innermost(p)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIndeterminate, err)
	}
	_, ok := res.Resolve(iface, concrete, cfg)
	Metrics().ObserveLookup(ok)
	return ok, nil
}
