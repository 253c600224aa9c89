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

// Package dyncast casts between interface types at run time.
//
// Given a value typed as one interface, possibly wrapped in reference
// counting or locking layers, dyncast produces the same value typed as
// another interface, keeping every wrapper layer and its shared state. The
// cast succeeds if and only if the concrete type behind the value has been
// declared as implementing the target interface.
//
//	var foo Foo = Qux(123)
//	shared := container.NewShared(container.NewCell(foo))
//
//	bar, err := dyncast.Cast[container.Shared[container.Cell[Bar]]](shared)
//
// bar shares shared's reference count and lock. Nothing is copied; only the
// interface's method table is swapped.
//
// # Declarations
//
// A pair (I, T) is declared with Declare or Proven:
//
//	dyncast.Register(
//	    dyncast.Declare[Foo, Qux](),                    // checked by reflection
//	    dyncast.Proven(func(q Qux) Bar { return q }),   // checked by the compiler
//	)
//
// Declaring captures a Shape: the runtime descriptor an I needs to dispatch
// to a T. Casting pairs that descriptor with the data of a live value. A
// concrete type can also declare its own pairs by implementing
// apis.Declarer.
//
// Declarations live in registries:
//
//   - the global registry, written by Register and read by Cast;
//   - the global frozen table, installed once by Freeze and consulted
//     before the global registry;
//   - explicit registries from NewRegistry and NewStatic, read by CastWith.
//
// # Design
//
// The package holds a read-mostly global snapshot: Config, the mutable
// Registry, the frozen table, the Resolver and the Builder that assembles
// registry and resolver. Readers load the snapshot atomically and never
// lock. Writers (SetConfig, SetBuilder, SetExt, SetRegistry, SetResolver,
// SetAll, Freeze) take a build mutex, derive a new snapshot and publish it.
//
// The default resolver tries, in order: the registry view (frozen table,
// then mutable registry), self-declaring types, strategies supplied through
// SetExt, and finally implicit derivation when apis.Config.Implicit is set.
//
// SetRegistry and SetResolver pin the layer they set: it is no longer
// rebuilt on configuration changes until UnpinRegistry or UnpinResolver.
//
// # Errors
//
// A failed cast returns a *CastError carrying the original container,
// untouched. Its Err wraps one of:
//
//   - ErrNotImplemented: the concrete type is not declared for the target;
//   - ErrUnknownInterface: as above, and the target interface has no
//     registered implementors (only with apis.Config.DistinguishUnknown);
//   - ErrUnknownConcrete: as above, and the concrete type is declared for
//     nothing at all (only with apis.Config.DistinguishUnknown);
//   - ErrIndeterminate: the concrete type could not be determined (nil
//     leaf, expired weak handle, exclusively borrowed cell);
//   - container.ErrLayerMismatch or container.ErrTooDeep: the source and
//     target wrapper stacks do not line up.
//
// # Observability
//
// Logging goes through a zap logger set with SetLogger (no-op by default).
// Prometheus counters are recorded once SetMetrics installs a
// metric.Metrics.
package dyncast
