// SPDX-License-Identifier: MPL-2.0

package hostmod

import (
	"sort"

	"github.com/wasmerio/wasmer-go/wasmer"
)

type (
	// Provider materializes one host-resident import namespace into a
	// session's store. Providers are owned by the host, not by the session:
	// resolving through a Provider reuses the host's single definition of
	// the namespace instead of loading a second copy from disk.
	Provider interface {
		Provide(store *wasmer.Store) (map[string]wasmer.IntoExtern, error)
	}

	// ProviderFunc adapts a function to the Provider interface.
	ProviderFunc func(store *wasmer.Store) (map[string]wasmer.IntoExtern, error)

	// Registry is the host's table of resident import namespaces. It is
	// built once at startup and passed into each session's resolver by
	// value reference, so there is no hidden process-wide state. Sessions
	// only read it.
	Registry struct {
		providers map[string]Provider
	}
)

// Provide implements Provider.
func (f ProviderFunc) Provide(store *wasmer.Store) (map[string]wasmer.IntoExtern, error) {
	return f(store)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces the provider for a namespace.
func (r *Registry) Register(name string, p Provider) {
	r.providers[name] = p
}

// Lookup returns the provider for a namespace, if resident.
func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns all registered namespace names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
