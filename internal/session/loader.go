// SPDX-License-Identifier: MPL-2.0

package session

import (
	"molt-cli/internal/hostmod"
	"molt-cli/internal/invoke"
	"molt-cli/internal/loadctx"
	"molt-cli/internal/modimage"
)

// moduleLoader loads module files into fresh isolated contexts. The host
// registry is shared across sessions; the contexts are not.
type moduleLoader struct {
	registry *hostmod.Registry
}

// NewModuleLoader returns the production Loader backed by loadctx.
func NewModuleLoader(registry *hostmod.Registry) Loader {
	return &moduleLoader{registry: registry}
}

// Load reads the module bytes and instantiates them in a new context.
// The file is fully read before instantiation, so rebuilding it on disk
// while the handle lives does not disturb the loaded copy.
func (l *moduleLoader) Load(path string) (Handle, error) {
	img, err := modimage.Load(path)
	if err != nil {
		return nil, err
	}

	ctx := loadctx.New(img.Dir(), l.registry)
	mod, err := ctx.LoadTop(img)
	if err != nil {
		ctx.RequestUnload()
		return nil, err
	}

	return &contextHandle{ctx: ctx, mod: mod}, nil
}

// contextHandle adapts a load context and its top module to the session
// Handle interface.
type contextHandle struct {
	ctx *loadctx.Context
	mod *loadctx.Module
}

func (h *contextHandle) Image() *modimage.Image       { return h.mod.Image() }
func (h *contextHandle) Manifest() *modimage.Manifest { return h.mod.Manifest() }

func (h *contextHandle) Thunk(symbol string) (invoke.Thunk, error) {
	return h.mod.Thunk(symbol)
}

func (h *contextHandle) RequestUnload() { h.ctx.RequestUnload() }
