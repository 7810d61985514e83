// SPDX-License-Identifier: MPL-2.0

// Package hostout abstracts the host application's document message channel.
//
// The loader subsystem only ever writes to this channel; it is an opaque
// output sink from its point of view. The default implementation routes
// through the structured logger so molt behaves sensibly standalone.
package hostout

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

type (
	// Channel is the host's message sink for session output.
	Channel interface {
		// Infof writes an informational message to the host document channel.
		Infof(format string, args ...any)
		// Errorf writes an error message to the host document channel.
		Errorf(format string, args ...any)
	}

	logChannel struct {
		logger *log.Logger
	}

	// Buffer is a Channel that records messages in order. Intended for
	// tests and for hosts that drain output themselves.
	Buffer struct {
		mu    sync.Mutex
		lines []string
	}
)

// NewLogChannel returns a Channel that writes through the given logger.
func NewLogChannel(logger *log.Logger) Channel {
	return &logChannel{logger: logger}
}

func (c *logChannel) Infof(format string, args ...any) {
	c.logger.Infof(format, args...)
}

func (c *logChannel) Errorf(format string, args ...any) {
	c.logger.Errorf(format, args...)
}

// Infof implements Channel.
func (b *Buffer) Infof(format string, args ...any) {
	b.append(fmt.Sprintf(format, args...))
}

// Errorf implements Channel.
func (b *Buffer) Errorf(format string, args ...any) {
	b.append("error: " + fmt.Sprintf(format, args...))
}

// Lines returns a copy of all recorded messages in write order.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Buffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}
