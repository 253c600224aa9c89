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
	"reflect"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"dirpx.dev/dyncast/apis"
	"dirpx.dev/dyncast/builder"
	"dirpx.dev/dyncast/config"
	"dirpx.dev/dyncast/shape"
)

// Reset to a clean snapshot using our test builder.
// This fully replaces builder, config, ext and rebuilds registry/resolver.
// Pins are reset (preg=false, pres=false) because we pass nil reg/res.
// The default snapshot is restored when the test ends.
func resetWithBuilder(tb testing.TB, b apis.Builder, cfg apis.Config, ext any) {
	tb.Helper()
	SetAll(&cfg, ext, nil, nil, b)
	tb.Cleanup(func() {
		def := config.DefaultConfig()
		SetAll(&def, nil, nil, nil, builder.New())
	})
}

func cfgDepth(depth int) apis.Config {
	return config.NewConfig(config.WithMaxDepth(depth))
}

// ---------------------- Test doubles (mocks) ----------------------

type mockRegistry struct {
	id   string
	mu   sync.Mutex
	data map[shape.Key]shape.Shape
}

func newMockRegistry(id string) *mockRegistry {
	return &mockRegistry{id: id, data: make(map[shape.Key]shape.Shape)}
}

func (m *mockRegistry) ID() string { return m.id }
func (m *mockRegistry) Insert(s shape.Shape) error {
	m.mu.Lock()
	m.data[s.Key()] = s
	m.mu.Unlock()
	return nil
}
func (m *mockRegistry) Lookup(iface, concrete reflect.Type) (shape.Shape, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[shape.Key{Interface: iface, Concrete: concrete}]
	return s, ok
}
func (m *mockRegistry) Knows(concrete reflect.Type) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if k.Concrete == concrete {
			return true
		}
	}
	return false
}
func (m *mockRegistry) Implementors(reflect.Type) []reflect.Type { return nil }
func (m *mockRegistry) Entries() []apis.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []apis.Entry
	for k, s := range m.data {
		out = append(out, apis.Entry{Interface: k.Interface, Concrete: k.Concrete, Shape: s})
	}
	return out
}
func (m *mockRegistry) Count() int   { m.mu.Lock(); defer m.mu.Unlock(); return len(m.data) }
func (m *mockRegistry) Reset()       { m.mu.Lock(); m.data = make(map[shape.Key]shape.Shape); m.mu.Unlock() }
func (m *mockRegistry) Frozen() bool { return false }

// mockResolver never resolves anything.
type mockResolver struct {
	id string
}

func (r *mockResolver) Resolve(reflect.Type, reflect.Type, apis.Config) (shape.Shape, bool) {
	return shape.Shape{}, false
}

func (r *mockResolver) Known(reflect.Type, apis.Config) bool { return false }

// mockBuilder records what it was asked to build.
type mockBuilder struct {
	mu            sync.Mutex
	lastCfg       apis.Config
	lastExt       any
	lastPrevRegID string
	regCounter    int
	resCounter    int
}

func (b *mockBuilder) BuildRegistry(cfg apis.Config, prev apis.Registry, ext any) apis.Registry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCfg, b.lastExt = cfg, ext
	if mr, ok := prev.(*mockRegistry); ok {
		b.lastPrevRegID = mr.id
	}
	b.regCounter++
	return newMockRegistry("reg#" + strconv.Itoa(b.regCounter))
}

func (b *mockBuilder) BuildResolver(cfg apis.Config, _ apis.Registry, _ apis.Resolver, ext any) apis.Resolver {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCfg, b.lastExt = cfg, ext
	b.resCounter++
	return &mockResolver{id: "res#" + strconv.Itoa(b.resCounter)}
}

// nilBuilder returns nil layers.
type nilBuilder struct{ reg apis.Registry }

func (n nilBuilder) BuildRegistry(apis.Config, apis.Registry, any) apis.Registry { return n.reg }
func (nilBuilder) BuildResolver(apis.Config, apis.Registry, apis.Resolver, any) apis.Resolver {
	return nil
}

// ---------------------- Tests ----------------------

func TestSetConfig_Rebuilds_Unpinned(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, cfgDepth(8), nil)

	// snapshot 1
	s1Reg := Registry()
	s1Res := Resolver()

	// change cfg -> both should rebuild (not pinned)
	SetConfig(config.NewConfig(config.WithMaxDepth(4), config.WithImplicit(true)))

	s2Reg := Registry()
	s2Res := Resolver()

	if s1Reg == s2Reg {
		t.Fatalf("registry was not rebuilt on SetConfig (unpinned)")
	}
	if s1Res == s2Res {
		t.Fatalf("resolver was not rebuilt on SetConfig (unpinned)")
	}

	b.mu.Lock()
	gotCfg, prevReg := b.lastCfg, b.lastPrevRegID
	b.mu.Unlock()
	if gotCfg.MaxDepth != 4 || !gotCfg.Implicit {
		t.Fatalf("builder received wrong cfg: %+v", gotCfg)
	}
	if prevReg != s1Reg.ID() {
		t.Fatalf("builder received prev registry %q, want %q", prevReg, s1Reg.ID())
	}
	if Config().MaxDepth != 4 {
		t.Fatalf("Config() not updated: %+v", Config())
	}
}

func TestSetRegistry_PinsRegistry_and_RebuildsResolverIfUnpinned(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, cfgDepth(8), nil)

	customReg := newMockRegistry("custom")
	SetRegistry(customReg)
	if !IsRegistryPinned() {
		t.Fatalf("SetRegistry must pin the registry")
	}

	beforeRes := Resolver()
	SetConfig(cfgDepth(3))

	afterReg := Registry()
	afterRes := Resolver()

	if afterReg != customReg {
		t.Fatalf("pinned registry was rebuilt unexpectedly")
	}
	if afterRes == beforeRes {
		t.Fatalf("resolver was not rebuilt when cfg changed and res not pinned")
	}
}

func TestSetResolver_PinsResolver(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, cfgDepth(8), nil)

	// Pin resolver
	customRes := &mockResolver{id: "custom"}
	SetResolver(customRes)
	if !IsResolverPinned() {
		t.Fatalf("SetResolver must pin the resolver")
	}

	regBefore := Registry()

	// Change cfg -> expect: registry rebuilt (not pinned), resolver unchanged (pinned)
	SetConfig(cfgDepth(3))

	regAfter := Registry()
	resAfter := Resolver()

	if resAfter != customRes {
		t.Fatalf("pinned resolver was rebuilt unexpectedly")
	}
	if regAfter == regBefore {
		t.Fatalf("registry was not rebuilt on SetConfig when resolver is pinned")
	}
}

func TestSetBuilder_Rebuilds_Only_Unpinned(t *testing.T) {
	// Start with builder A
	a := &mockBuilder{}
	resetWithBuilder(t, a, cfgDepth(8), nil)

	// Pin resolver, leave registry unpinned
	SetResolver(&mockResolver{id: "pinned"})
	regBefore := Registry()
	resBefore := Resolver()

	// Swap to builder B: the unpinned registry is rebuilt by B right away.
	b := &mockBuilder{}
	SetBuilder(b)
	if Builder() != b {
		t.Fatalf("Builder() was not replaced")
	}

	regAfter := Registry()
	resAfter := Resolver()

	if regAfter == regBefore {
		t.Fatalf("registry did not rebuild after SetBuilder (unpinned)")
	}
	if resAfter != resBefore {
		t.Fatalf("pinned resolver was rebuilt after SetBuilder")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.regCounter != 1 || b.resCounter != 0 {
		t.Fatalf("builder B counters = (%d,%d), want (1,0)", b.regCounter, b.resCounter)
	}
}

func TestSetExt_Rebuilds_Unpinned_and_PassesValue(t *testing.T) {
	// Ensure snapshot uses our mock builder
	b := &mockBuilder{}
	resetWithBuilder(t, b, cfgDepth(8), nil)

	// Change ext -> should rebuild unpinned layers via current builder (b) and pass ext
	type extCfg struct{ X int }
	SetExt(extCfg{X: 42})

	b.mu.Lock()
	got := b.lastExt
	b.mu.Unlock()
	ec, ok := got.(extCfg)
	if !ok || ec.X != 42 {
		t.Fatalf("builder did not receive ext properly: %#v", got)
	}
	if ec, ok := ExtAs[extCfg](); !ok || ec.X != 42 {
		t.Fatalf("ExtAs = (%#v,%v), want ({42},true)", ec, ok)
	}

	// Pin both and ensure no rebuild on SetExt
	SetRegistry(Registry())
	SetResolver(Resolver())
	rCntBefore, sCntBefore := func() (int, int) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.regCounter, b.resCounter
	}()
	SetExt(extCfg{X: 7})
	rCntAfter, sCntAfter := func() (int, int) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.regCounter, b.resCounter
	}()
	if rCntAfter != rCntBefore || sCntAfter != sCntBefore {
		t.Fatalf("SetExt should not rebuild when both layers are pinned")
	}
}

func TestUnpin_Allows_Rebuild_After(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, cfgDepth(8), nil)

	PinRegistry()
	PinResolver()

	reg1 := Registry()
	res1 := Resolver()
	SetConfig(cfgDepth(4))
	if Registry() != reg1 || Resolver() != res1 {
		t.Fatalf("pinned layers should not rebuild on SetConfig")
	}

	UnpinRegistry()
	UnpinResolver()
	SetConfig(cfgDepth(6))
	if Registry() == reg1 {
		t.Fatalf("registry should rebuild after UnpinRegistry+SetConfig")
	}
	if Resolver() == res1 {
		t.Fatalf("resolver should rebuild after UnpinResolver+SetConfig")
	}
}

func TestSetAll_PanicsOnNilLayers(t *testing.T) {
	resetWithBuilder(t, &mockBuilder{}, cfgDepth(8), nil)
	before := st.Load()

	assertPanics := func(want error, fn func()) {
		t.Helper()
		defer func() {
			if r := recover(); r != want {
				t.Fatalf("recover() = %v, want %v", r, want)
			}
		}()
		fn()
	}

	assertPanics(ErrNilRegistry, func() { SetAll(nil, nil, nil, nil, nilBuilder{}) })
	assertPanics(ErrNilResolver, func() { SetAll(nil, nil, nil, nil, nilBuilder{reg: newMockRegistry("ok")}) })

	if st.Load() != before {
		t.Fatalf("a failed rebuild must not publish a snapshot")
	}
}

func TestCast_Concurrent_With_SetConfig(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, cfgDepth(8), nil)

	type token struct{ Walker }
	done := make(chan struct{})
	var wg sync.WaitGroup

	readers := runtime.GOMAXPROCS(0) * 4
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			var w Walker = token{}
			for j := 0; j < 1000; j++ {
				_, _ = Cast[Runner](w)
				_, _ = Implements[Runner](w)
			}
		}()
	}

	go func() {
		for i := 0; i < 20; i++ {
			SetConfig(config.NewConfig(
				config.WithMaxDepth(4+i%5),
				config.WithImplicit(i%2 == 0),
				config.WithDistinguishUnknown(i%3 == 0),
			))
			time.Sleep(time.Millisecond)
		}
		close(done)
	}()

	wg.Wait()
	<-done
}

type Walker interface{ Walk() }
type Runner interface{ Run() }
