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

package strategy_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/config"
	"dirpx.dev/dyncast/registry"
	"dirpx.dev/dyncast/shape"
	"dirpx.dev/dyncast/strategy"
)

// Local test types.
type Greeter interface{ Greet() string }
type Counter interface{ Count() int }

type A struct{}

func (A) Greet() string { return "a" }

type G[T any] struct{}

func (G[T]) Greet() string { return "g" }
func (G[T]) Count() int    { return 0 }

var (
	greeterT = reflect.TypeFor[Greeter]()
	counterT = reflect.TypeFor[Counter]()
)

// cfg returns a convenient baseline Config for tests.
func cfg(opts ...config.Option) apis.Config {
	return config.NewConfig(opts...)
}

func mustShape[I, T any](t testing.TB) shape.Shape {
	t.Helper()
	s, err := shape.Of[I, T]()
	if err != nil {
		t.Fatalf("shape.Of: %v", err)
	}
	return s
}

func TestRegistryStrategy_WithRealRegistry(t *testing.T) {
	conf := cfg()
	reg := registry.New()

	want := mustShape[Greeter, A](t)
	if err := reg.Insert(want); err != nil {
		t.Fatalf("Insert(Greeter, A): %v", err)
	}

	s := strategy.NewRegistryStrategy(reg)

	got, ok := s.TryResolve(greeterT, reflect.TypeFor[A](), conf)
	if !ok || !got.Equal(want) {
		t.Fatalf("TryResolve(Greeter, A) = (%v,%v), want (%v,true)", got, ok, want)
	}
	if !s.TryKnown(reflect.TypeFor[A](), conf) {
		t.Fatal("TryKnown(A) = false, want true")
	}

	cases := []struct {
		name     string
		iface    reflect.Type
		concrete reflect.Type
	}{
		{"unregistered concrete", greeterT, reflect.TypeFor[G[int]]()},
		{"unregistered interface", counterT, reflect.TypeFor[A]()},
		{"pointer is another type", greeterT, reflect.TypeFor[*A]()},
		{"nil iface", nil, reflect.TypeFor[A]()},
		{"nil concrete", greeterT, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got, ok := s.TryResolve(tc.iface, tc.concrete, conf); ok || got.Valid() {
				t.Fatalf("TryResolve = (%v,%v), want miss", got, ok)
			}
		})
	}

	if s.TryKnown(reflect.TypeFor[G[int]](), conf) {
		t.Fatal("TryKnown(G[int]) = true, want false")
	}
}

func TestRegistryStrategy_NilRegistry(t *testing.T) {
	s := strategy.NewRegistryStrategy(nil)
	if _, ok := s.TryResolve(greeterT, reflect.TypeFor[A](), cfg()); ok {
		t.Fatal("nil registry must never resolve")
	}
	if s.TryKnown(reflect.TypeFor[A](), cfg()) {
		t.Fatal("nil registry must know nothing")
	}
}

// A small concurrency smoke test to ensure RegistryStrategy + real registry behave well.
func TestRegistryStrategy_WithRealRegistry_Concurrent(t *testing.T) {
	conf := cfg()
	reg := registry.New()

	shapes := []shape.Shape{
		mustShape[Greeter, A](t),
		mustShape[Greeter, G[int]](t),
		mustShape[Counter, G[int]](t),
		mustShape[Greeter, G[string]](t),
	}
	for _, sh := range shapes {
		if err := reg.Insert(sh); err != nil {
			t.Fatalf("Insert(%s): %v", sh, err)
		}
	}

	s := strategy.NewRegistryStrategy(reg)

	workers := runtime.GOMAXPROCS(0) * 4
	iters := 2000

	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan string, workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				want := shapes[i%len(shapes)]
				got, ok := s.TryResolve(want.Interface(), want.Concrete(), conf)
				if !ok || !got.Equal(want) {
					errCh <- want.String()
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for e := range errCh {
		t.Fatalf("concurrent mismatch: %s", e)
	}
}
