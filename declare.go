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
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/metric"
	"dirpx.dev/dyncast/registry"
	"dirpx.dev/dyncast/shape"
)

// ErrAlreadyFrozen is returned by every Freeze call after the first.
var ErrAlreadyFrozen = errors.New("dyncast: static table already frozen")

// Declare states that T implements I. See shape.Declare.
func Declare[I, T any]() shape.Declaration {
	return shape.Declare[I, T]()
}

// Proven states that T implements I with a compile-time proof. See shape.Proven.
func Proven[I, T any](conv func(T) I) shape.Declaration {
	return shape.Proven(conv)
}

// Register inserts decls into the global registry. Every declaration is
// attempted; the failures are joined into the returned error.
//
// Registrations and reconfigurations are ordered: a pair registered here is
// carried into any registry rebuilt by a later SetConfig, SetBuilder or
// SetExt.
func Register(decls ...shape.Declaration) error {
	buildMu.RLock()
	defer buildMu.RUnlock()

	return insertAll(st.Load().view(), decls)
}

// NewRegistry returns a dynamic registry holding decls.
func NewRegistry(decls ...shape.Declaration) (apis.Registry, error) {
	reg := registry.New()
	if err := insertAll(reg, decls); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewStatic returns a frozen registry holding decls.
func NewStatic(decls ...shape.Declaration) (apis.Registry, error) {
	shapes := make([]shape.Shape, 0, len(decls))
	var errs []error
	for _, d := range decls {
		sh, err := d.Shape()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		shapes = append(shapes, sh)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return registry.NewStatic(shapes...)
}

var freezeOnce sync.Once

// Freeze installs decls as the process-wide frozen table, consulted before
// the mutable registry. It succeeds at most once; later calls return
// ErrAlreadyFrozen whether or not the first call failed.
func Freeze(decls ...shape.Declaration) error {
	err := ErrAlreadyFrozen
	freezeOnce.Do(func() {
		var static apis.Registry
		static, err = NewStatic(decls...)
		if err != nil {
			Logger().Warn("freeze failed", zap.Error(err))
			return
		}

		buildMu.Lock()
		defer buildMu.Unlock()

		old := st.Load()
		next := old.clone()
		next.static = static
		if !old.pres {
			next.res = next.bld.BuildResolver(next.cfg, next.view(), old.res, next.ext)
		}
		publish(next)

		Logger().Debug("static table frozen",
			zap.String("registry", static.ID()),
			zap.Int("entries", static.Count()),
		)
	})
	return err
}

// insertAll inserts every declaration, logging and counting each outcome.
func insertAll(reg apis.Registry, decls []shape.Declaration) error {
	log, m := Logger(), Metrics()
	var errs []error
	for _, d := range decls {
		sh, err := d.Shape()
		if err == nil {
			err = reg.Insert(sh)
		}
		switch {
		case err == nil:
			m.ObserveRegistration(metric.ResultOK)
			log.Debug("shape registered",
				zap.Stringer("interface", sh.Interface()),
				zap.Stringer("concrete", sh.Concrete()),
				zap.String("registry", reg.ID()),
			)
		case errors.Is(err, registry.ErrConflictingRegistration):
			m.ObserveRegistration(metric.ResultConflict)
			log.Warn("conflicting registration",
				zap.Stringer("interface", sh.Interface()),
				zap.Stringer("concrete", sh.Concrete()),
				zap.String("registry", reg.ID()),
			)
			errs = append(errs, fmt.Errorf("%w: %s", err, sh.Key()))
		default:
			m.ObserveRegistration(metric.ResultInvalid)
			log.Debug("registration rejected", zap.String("registry", reg.ID()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
