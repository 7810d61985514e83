// SPDX-License-Identifier: MPL-2.0

package loadctx

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/wasmerio/wasmer-go/wasmer"

	"molt-cli/internal/hostmod"
	"molt-cli/internal/modimage"
)

// ErrContextUnloaded is returned when a context or module is used after
// RequestUnload. A session must never touch a handle past that point.
var ErrContextUnloaded = errors.New("load context already unloaded")

type (
	// Context is an isolated, reclaimable execution context. It owns its
	// own engine and store, exactly one top-level module, and every sibling
	// dependency pulled in by the resolver, so the whole load cycle can be
	// torn down as a unit. The only references leaving the context are the
	// host registry's own externs, which the host owns.
	Context struct {
		id       string
		baseDir  string
		registry *hostmod.Registry
		logger   *log.Logger

		engine *wasmer.Engine
		store  *wasmer.Store

		top      *Module
		deps     map[string]*Module
		resolved map[string]map[string]wasmer.IntoExtern
		unloaded bool
	}

	// Module is one loaded module inside a Context: the decoded image, its
	// manifest, and the live instance backing late-bound dispatch.
	Module struct {
		ctx      *Context
		image    *modimage.Image
		manifest *modimage.Manifest
		module   *wasmer.Module
		instance *wasmer.Instance
	}
)

// New creates an empty context rooted at baseDir. Sibling dependencies are
// probed relative to baseDir; host-resident namespaces come from registry.
func New(baseDir string, registry *hostmod.Registry) *Context {
	engine := wasmer.NewEngine()
	id := uuid.NewString()
	return &Context{
		id:       id,
		baseDir:  baseDir,
		registry: registry,
		logger:   log.With("load_context", id),
		engine:   engine,
		store:    wasmer.NewStore(engine),
		deps:     make(map[string]*Module),
		resolved: make(map[string]map[string]wasmer.IntoExtern),
	}
}

// ID returns the context's unique identifier, used in log correlation.
func (c *Context) ID() string { return c.id }

// LoadTop compiles and instantiates the top-level module of this context.
// A context holds exactly one top-level module per load cycle.
func (c *Context) LoadTop(img *modimage.Image) (*Module, error) {
	if c.unloaded {
		return nil, ErrContextUnloaded
	}
	if c.top != nil {
		return nil, fmt.Errorf("context %s already holds a top-level module", c.id)
	}

	manifest, err := img.Manifest()
	if err != nil {
		return nil, err
	}

	mod, err := wasmer.NewModule(c.store, img.Bytes)
	if err != nil {
		return nil, &modimage.MalformedError{Path: img.Path, Reason: "runtime rejected module", Cause: err}
	}

	importObject := c.resolveImports(mod, make(map[string]bool))
	instance, err := wasmer.NewInstance(mod, importObject)
	if err != nil {
		return nil, fmt.Errorf("instantiate module %s: %w", img.Path, err)
	}

	c.top = &Module{ctx: c, image: img, manifest: manifest, module: mod, instance: instance}
	c.logger.Debug("top-level module loaded", "path", img.Path, "deps", len(c.deps))
	return c.top, nil
}

// RequestUnload detaches and releases everything the context owns: the
// top-level module, all resolved sibling dependencies, and the store
// beneath them. The engine has no explicit close in wasmer-go; dropping
// the last reference hands it to its finalizer. Idempotent. After it
// returns, every Module handle obtained from this context is dead.
func (c *Context) RequestUnload() {
	if c.unloaded {
		return
	}
	c.unloaded = true

	if c.top != nil {
		c.top.release()
		c.top = nil
	}
	for name, dep := range c.deps {
		dep.release()
		delete(c.deps, name)
	}
	c.resolved = nil

	if c.store != nil {
		c.store.Close()
		c.store = nil
	}
	c.engine = nil

	c.logger.Debug("context unloaded")
}

// Unloaded reports whether RequestUnload has been called.
func (c *Context) Unloaded() bool { return c.unloaded }

// Image returns the in-memory image the module was loaded from.
func (m *Module) Image() *modimage.Image { return m.image }

// Manifest returns the module's decoded command metadata.
func (m *Module) Manifest() *modimage.Manifest { return m.manifest }

// Thunk resolves an export symbol to a callable function. Resolution is
// late-bound: nothing is cached between calls, so the dispatch path stays
// independent of catalog construction.
func (m *Module) Thunk(symbol string) (func(args ...interface{}) (interface{}, error), error) {
	if m.ctx.unloaded {
		return nil, ErrContextUnloaded
	}
	fn, err := m.instance.Exports.GetFunction(symbol)
	if err != nil {
		return nil, fmt.Errorf("resolve export %q: %w", symbol, err)
	}
	return func(args ...interface{}) (interface{}, error) {
		return fn(args...)
	}, nil
}

// RequestUnload tears down the whole owning context. Provided on Module so
// a session can treat the handle it got from LoadTop as the unit of
// ownership.
func (m *Module) RequestUnload() {
	m.ctx.RequestUnload()
}

// release frees the module's native resources.
func (m *Module) release() {
	if m.instance != nil {
		m.instance.Close()
		m.instance = nil
	}
	if m.module != nil {
		m.module.Close()
		m.module = nil
	}
}
