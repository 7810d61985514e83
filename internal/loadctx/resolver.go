// SPDX-License-Identifier: MPL-2.0

package loadctx

import (
	"os"
	"path/filepath"

	"github.com/wasmerio/wasmer-go/wasmer"

	"molt-cli/internal/modimage"
)

// rule identifies which step of the resolution chain satisfies a namespace.
type rule int

const (
	// ruleHost reuses a namespace already resident in the host registry.
	ruleHost rule = iota
	// ruleSibling loads {baseDir}/{name}.wasm into the same context.
	ruleSibling
	// ruleUnresolved leaves the namespace unsatisfied; the runtime's
	// missing-import error propagates at instantiation.
	ruleUnresolved
)

// String returns a human-readable rule name.
func (r rule) String() string {
	switch r {
	case ruleHost:
		return "host"
	case ruleSibling:
		return "sibling"
	default:
		return "unresolved"
	}
}

// planNamespace decides which resolution rule applies to a namespace.
// First match wins: host reuse, then sibling probe, then unresolved.
// Pure so the precedence chain is testable without a runtime.
func planNamespace(ns string, hostResident func(string) bool, siblingPresent func(string) bool) rule {
	if hostResident(ns) {
		return ruleHost
	}
	if siblingPresent(ns) {
		return ruleSibling
	}
	return ruleUnresolved
}

// resolveImports builds the import object for a module, resolving each
// distinct import namespace through the resolution chain. Namespaces that
// stay unresolved are simply not registered; the instantiation that follows
// reports them as missing imports.
//
// Resolution must never crash the loader: every probe failure is swallowed
// and downgraded to "unresolved".
func (c *Context) resolveImports(mod *wasmer.Module, visiting map[string]bool) *wasmer.ImportObject {
	importObject := wasmer.NewImportObject()

	for _, ns := range importNamespaces(mod) {
		externs, ok := c.resolveNamespace(ns, visiting)
		if !ok {
			c.logger.Debug("import namespace unresolved", "namespace", ns)
			continue
		}
		importObject.Register(ns, externs)
	}

	return importObject
}

// resolveNamespace satisfies one import namespace. Results are cached per
// context, so resolving the same name twice within a session always yields
// the same externs and never a second copy.
func (c *Context) resolveNamespace(ns string, visiting map[string]bool) (map[string]wasmer.IntoExtern, bool) {
	if cached, ok := c.resolved[ns]; ok {
		return cached, true
	}

	hostResident := func(name string) bool {
		_, ok := c.registry.Lookup(name)
		return ok
	}
	siblingPresent := func(name string) bool {
		if visiting[name] {
			return false
		}
		_, err := os.Stat(c.siblingPath(name))
		return err == nil
	}

	switch planNamespace(ns, hostResident, siblingPresent) {
	case ruleHost:
		provider, _ := c.registry.Lookup(ns)
		externs, err := provider.Provide(c.store)
		if err != nil {
			c.logger.Debug("host provider failed", "namespace", ns, "err", err)
			return nil, false
		}
		c.resolved[ns] = externs
		c.logger.Debug("namespace resolved", "namespace", ns, "rule", ruleHost)
		return externs, true

	case ruleSibling:
		externs, ok := c.loadSibling(ns, visiting)
		if !ok {
			return nil, false
		}
		c.resolved[ns] = externs
		c.logger.Debug("namespace resolved", "namespace", ns, "rule", ruleSibling)
		return externs, true

	default:
		return nil, false
	}
}

// loadSibling loads {baseDir}/{ns}.wasm into this context and exposes its
// exports as the namespace's externs. The sibling shares the context's
// store, so it is reclaimed together with the top-level module. Sibling
// imports resolve recursively through the same chain; visiting guards
// against import cycles.
func (c *Context) loadSibling(ns string, visiting map[string]bool) (map[string]wasmer.IntoExtern, bool) {
	visiting[ns] = true
	defer delete(visiting, ns)

	img, err := modimage.Load(c.siblingPath(ns))
	if err != nil {
		c.logger.Debug("sibling probe failed", "namespace", ns, "err", err)
		return nil, false
	}

	manifest, err := img.Manifest()
	if err != nil {
		c.logger.Debug("sibling manifest undecodable", "namespace", ns, "err", err)
		return nil, false
	}

	mod, err := wasmer.NewModule(c.store, img.Bytes)
	if err != nil {
		c.logger.Debug("sibling rejected by runtime", "namespace", ns, "err", err)
		return nil, false
	}

	importObject := c.resolveImports(mod, visiting)
	instance, err := wasmer.NewInstance(mod, importObject)
	if err != nil {
		mod.Close()
		c.logger.Debug("sibling instantiation failed", "namespace", ns, "err", err)
		return nil, false
	}

	c.deps[ns] = &Module{ctx: c, image: img, manifest: manifest, module: mod, instance: instance}
	return exportExterns(mod, instance), true
}

// siblingPath returns the probe path for a dependency namespace.
func (c *Context) siblingPath(ns string) string {
	return filepath.Join(c.baseDir, ns+modimage.Ext)
}

// exportExterns projects an instance's exports into an extern map usable to
// satisfy another module's imports.
func exportExterns(mod *wasmer.Module, instance *wasmer.Instance) map[string]wasmer.IntoExtern {
	externs := make(map[string]wasmer.IntoExtern)

	for _, export := range mod.Exports() {
		name := export.Name()
		switch export.Type().Kind() {
		case wasmer.FUNCTION:
			if fn, err := instance.Exports.GetRawFunction(name); err == nil {
				externs[name] = fn
			}
		case wasmer.GLOBAL:
			if g, err := instance.Exports.GetGlobal(name); err == nil {
				externs[name] = g
			}
		case wasmer.MEMORY:
			if mem, err := instance.Exports.GetMemory(name); err == nil {
				externs[name] = mem
			}
		case wasmer.TABLE:
			if tbl, err := instance.Exports.GetTable(name); err == nil {
				externs[name] = tbl
			}
		}
	}

	return externs
}

// importNamespaces returns the distinct import namespaces of a module in
// first-appearance order, keeping resolution deterministic.
func importNamespaces(mod *wasmer.Module) []string {
	var names []string
	seen := make(map[string]bool)
	for _, imp := range mod.Imports() {
		ns := imp.Module()
		if !seen[ns] {
			seen[ns] = true
			names = append(names, ns)
		}
	}
	return names
}
