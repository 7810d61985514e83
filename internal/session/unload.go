// SPDX-License-Identifier: MPL-2.0

package session

import (
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/log"
)

// Coordinator is the production Unloader. Teardown releases the handle's
// context and then nudges the Go runtime to return freed memory promptly,
// so repeated load/unload cycles in one process keep a flat footprint.
type Coordinator struct {
	logger *log.Logger
}

// NewCoordinator returns an unload coordinator logging through logger.
func NewCoordinator(logger *log.Logger) *Coordinator {
	return &Coordinator{logger: logger}
}

// Teardown releases h unconditionally. A panic out of the release path is
// contained here; a failed command invocation must never leave the module
// pinned in memory.
func (c *Coordinator) Teardown(h Handle) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic during module unload", "panic", r)
		}
	}()

	h.RequestUnload()

	runtime.GC()
	runtime.Gosched()
	debug.FreeOSMemory()

	c.logger.Debug("module unloaded")
}
