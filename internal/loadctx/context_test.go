// SPDX-License-Identifier: MPL-2.0

package loadctx

import (
	"errors"
	"testing"

	"github.com/wasmerio/wasmer-go/wasmer"

	"molt-cli/internal/hostmod"
	"molt-cli/internal/modimage"
)

// hostRegistryWith returns a registry serving the given namespace with a
// single nullary host function named "f". The counter increments on every
// Provide call, which is how the reuse tests observe rule-1 idempotence.
func hostRegistryWith(ns string, provideCount *int) *hostmod.Registry {
	r := hostmod.NewRegistry()
	r.Register(ns, hostmod.ProviderFunc(func(store *wasmer.Store) (map[string]wasmer.IntoExtern, error) {
		*provideCount++
		fn := wasmer.NewFunction(
			store,
			wasmer.NewFunctionType(wasmer.NewValueTypes(), wasmer.NewValueTypes()),
			func([]wasmer.Value) ([]wasmer.Value, error) {
				return []wasmer.Value{}, nil
			},
		)
		return map[string]wasmer.IntoExtern{"f": fn}, nil
	}))
	return r
}

func loadImage(t *testing.T, path string) *modimage.Image {
	t.Helper()
	img, err := modimage.Load(path)
	if err != nil {
		t.Fatalf("load fixture image: %v", err)
	}
	return img
}

func TestLoadTop_ExportsResolvable(t *testing.T) {
	dir := t.TempDir()
	path := writeWasm(t, dir, "cmdlib.wasm", buildModule(nil, []string{"Foo.Bar.HELLO"}))

	ctx := New(dir, hostmod.NewRegistry())
	defer ctx.RequestUnload()

	mod, err := ctx.LoadTop(loadImage(t, path))
	if err != nil {
		t.Fatalf("LoadTop() error = %v", err)
	}

	thunk, err := mod.Thunk("Foo.Bar.HELLO")
	if err != nil {
		t.Fatalf("Thunk() error = %v", err)
	}
	if _, err := thunk(); err != nil {
		t.Errorf("thunk call error = %v", err)
	}

	if _, err := mod.Thunk("Foo.Bar.MISSING"); err == nil {
		t.Error("Thunk() resolved a missing export")
	}
}

func TestLoadTop_RejectsCorruptImage(t *testing.T) {
	dir := t.TempDir()
	// Valid preamble, garbage section table: passes the byte loader's
	// preamble check, fails runtime compilation.
	data := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, 0x01, 0x7F, 0x00}
	path := writeWasm(t, dir, "cmdlib.wasm", data)

	img := &modimage.Image{Path: path, Bytes: data}
	ctx := New(dir, hostmod.NewRegistry())
	defer ctx.RequestUnload()

	_, err := ctx.LoadTop(img)
	var malformed *modimage.MalformedError
	if !errors.As(err, &malformed) {
		t.Errorf("LoadTop() error = %v, want *MalformedError", err)
	}
}

func TestLoadTop_HostNamespaceReused(t *testing.T) {
	dir := t.TempDir()
	top := buildModule([]funcImport{{module: "geo", name: "f"}}, []string{"CMD"})
	path := writeWasm(t, dir, "cmdlib.wasm", top)
	// A sibling with the same name exists, but the host wins.
	writeWasm(t, dir, "geo.wasm", buildModule(nil, []string{"f"}))

	var provides int
	ctx := New(dir, hostRegistryWith("geo", &provides))
	defer ctx.RequestUnload()

	if _, err := ctx.LoadTop(loadImage(t, path)); err != nil {
		t.Fatalf("LoadTop() error = %v", err)
	}
	if provides != 1 {
		t.Errorf("host provider called %d times, want 1", provides)
	}
	if len(ctx.deps) != 0 {
		t.Errorf("sibling loaded despite host residency: %v", ctx.deps)
	}
}

func TestResolveNamespace_CachedWithinSession(t *testing.T) {
	var provides int
	ctx := New(t.TempDir(), hostRegistryWith("geo", &provides))
	defer ctx.RequestUnload()

	first, ok := ctx.resolveNamespace("geo", make(map[string]bool))
	if !ok {
		t.Fatal("first resolveNamespace(geo) failed")
	}
	second, ok := ctx.resolveNamespace("geo", make(map[string]bool))
	if !ok {
		t.Fatal("second resolveNamespace(geo) failed")
	}

	if provides != 1 {
		t.Errorf("provider called %d times, want 1 (resolution must be idempotent)", provides)
	}
	if len(first) != len(second) {
		t.Errorf("cached resolution differs: %d vs %d externs", len(first), len(second))
	}
}

func TestLoadTop_SiblingResolved(t *testing.T) {
	dir := t.TempDir()
	top := buildModule([]funcImport{{module: "geo", name: "f"}}, []string{"CMD"})
	path := writeWasm(t, dir, "cmdlib.wasm", top)
	writeWasm(t, dir, "geo.wasm", buildModule(nil, []string{"f"}))

	ctx := New(dir, hostmod.NewRegistry())
	defer ctx.RequestUnload()

	mod, err := ctx.LoadTop(loadImage(t, path))
	if err != nil {
		t.Fatalf("LoadTop() error = %v", err)
	}
	if _, ok := ctx.deps["geo"]; !ok {
		t.Error("sibling dependency not registered in context")
	}

	thunk, err := mod.Thunk("CMD")
	if err != nil {
		t.Fatalf("Thunk() error = %v", err)
	}
	if _, err := thunk(); err != nil {
		t.Errorf("thunk call error = %v", err)
	}
}

func TestLoadTop_TransitiveSiblings(t *testing.T) {
	dir := t.TempDir()
	top := buildModule([]funcImport{{module: "geo", name: "f"}}, []string{"CMD"})
	path := writeWasm(t, dir, "cmdlib.wasm", top)
	// geo itself depends on units, resolved through the same chain.
	writeWasm(t, dir, "geo.wasm", buildModule([]funcImport{{module: "units", name: "f"}}, []string{"f"}))
	writeWasm(t, dir, "units.wasm", buildModule(nil, []string{"f"}))

	ctx := New(dir, hostmod.NewRegistry())
	defer ctx.RequestUnload()

	if _, err := ctx.LoadTop(loadImage(t, path)); err != nil {
		t.Fatalf("LoadTop() error = %v", err)
	}
	for _, ns := range []string{"geo", "units"} {
		if _, ok := ctx.deps[ns]; !ok {
			t.Errorf("dependency %q not registered", ns)
		}
	}
}

func TestLoadTop_UnresolvedImportFailsInstantiation(t *testing.T) {
	dir := t.TempDir()
	top := buildModule([]funcImport{{module: "nope", name: "f"}}, []string{"CMD"})
	path := writeWasm(t, dir, "cmdlib.wasm", top)

	ctx := New(dir, hostmod.NewRegistry())
	defer ctx.RequestUnload()

	if _, err := ctx.LoadTop(loadImage(t, path)); err == nil {
		t.Error("LoadTop() succeeded despite an unresolvable import")
	}
}

func TestLoadTop_CorruptSiblingIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	top := buildModule([]funcImport{{module: "geo", name: "f"}}, []string{"CMD"})
	path := writeWasm(t, dir, "cmdlib.wasm", top)
	// Present but unreadable as a module: probe fails, rule 3 applies,
	// and the resulting missing-import error is the runtime's, not a panic.
	writeWasm(t, dir, "geo.wasm", []byte("not a module"))

	ctx := New(dir, hostmod.NewRegistry())
	defer ctx.RequestUnload()

	if _, err := ctx.LoadTop(loadImage(t, path)); err == nil {
		t.Error("LoadTop() succeeded with a corrupt sibling")
	}
}

func TestRequestUnload_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeWasm(t, dir, "cmdlib.wasm", buildModule(nil, []string{"CMD"}))

	ctx := New(dir, hostmod.NewRegistry())
	mod, err := ctx.LoadTop(loadImage(t, path))
	if err != nil {
		t.Fatalf("LoadTop() error = %v", err)
	}

	ctx.RequestUnload()
	ctx.RequestUnload()

	if !ctx.Unloaded() {
		t.Error("Unloaded() = false after RequestUnload")
	}
	if ctx.store != nil || ctx.engine != nil {
		t.Error("native runtime references still held after unload")
	}
	if ctx.top != nil || len(ctx.deps) != 0 {
		t.Error("module references still held after unload")
	}
	if _, err := mod.Thunk("CMD"); !errors.Is(err, ErrContextUnloaded) {
		t.Errorf("Thunk() after unload = %v, want ErrContextUnloaded", err)
	}
	if _, err := ctx.LoadTop(loadImage(t, path)); !errors.Is(err, ErrContextUnloaded) {
		t.Errorf("LoadTop() after unload = %v, want ErrContextUnloaded", err)
	}
}

// A rebuild between two sessions must be observable by the second session
// without the first session's handle being involved in the second load.
func TestReload_SeesRebuiltModule(t *testing.T) {
	dir := t.TempDir()
	path := writeWasm(t, dir, "cmdlib.wasm", buildModule(nil, []string{"OLD"}))

	first := New(dir, hostmod.NewRegistry())
	firstMod, err := first.LoadTop(loadImage(t, path))
	if err != nil {
		t.Fatalf("first LoadTop() error = %v", err)
	}
	first.RequestUnload()

	writeWasm(t, dir, "cmdlib.wasm", buildModule(nil, []string{"OLD", "NEW"}))

	second := New(dir, hostmod.NewRegistry())
	defer second.RequestUnload()
	secondMod, err := second.LoadTop(loadImage(t, path))
	if err != nil {
		t.Fatalf("second LoadTop() error = %v", err)
	}

	if _, err := secondMod.Thunk("NEW"); err != nil {
		t.Errorf("rebuilt export not visible in second session: %v", err)
	}
	if _, err := firstMod.Thunk("NEW"); !errors.Is(err, ErrContextUnloaded) {
		t.Errorf("first session handle usable after unload: %v", err)
	}
}
