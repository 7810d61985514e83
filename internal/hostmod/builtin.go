// SPDX-License-Identifier: MPL-2.0

package hostmod

import (
	"time"

	"github.com/wasmerio/wasmer-go/wasmer"

	"molt-cli/internal/hostout"
)

// HostNamespace is the built-in import namespace every command library may
// link against without shipping a sibling module for it.
const HostNamespace = "molt:host"

// Builtin returns a registry preloaded with the molt:host namespace.
//
// Exposed functions:
//   - notify_code(i32): writes a numeric signal to the host output channel
//   - ticks() -> i64: milliseconds of host uptime, for coarse timing
func Builtin(out hostout.Channel) *Registry {
	start := time.Now()

	r := NewRegistry()
	r.Register(HostNamespace, ProviderFunc(func(store *wasmer.Store) (map[string]wasmer.IntoExtern, error) {
		notifyCode := wasmer.NewFunction(
			store,
			wasmer.NewFunctionType(wasmer.NewValueTypes(wasmer.I32), wasmer.NewValueTypes()),
			func(args []wasmer.Value) ([]wasmer.Value, error) {
				out.Infof("library signal: code=%d", args[0].I32())
				return []wasmer.Value{}, nil
			},
		)

		ticks := wasmer.NewFunction(
			store,
			wasmer.NewFunctionType(wasmer.NewValueTypes(), wasmer.NewValueTypes(wasmer.I64)),
			func([]wasmer.Value) ([]wasmer.Value, error) {
				return []wasmer.Value{wasmer.NewI64(time.Since(start).Milliseconds())}, nil
			},
		)

		return map[string]wasmer.IntoExtern{
			"notify_code": notifyCode,
			"ticks":       ticks,
		}, nil
	}))

	return r
}
