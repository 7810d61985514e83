// SPDX-License-Identifier: MPL-2.0

package modimage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Ext is the filename extension of command library modules.
const Ext = ".wasm"

// wasmVersion is the only binary version this loader accepts.
const wasmVersion = 1

// wasmMagic is the 4-byte module preamble ("\0asm").
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D}

// ErrModuleNotFound is returned by Load when the module file does not exist.
// This is a user-facing condition: the library has not been built yet.
var ErrModuleNotFound = errors.New("module not found")

type (
	// Image is a command library module read fully into memory.
	// No file handle survives Load, so the file on disk can be rebuilt and
	// overwritten while the Image is still in use by a running session.
	Image struct {
		// Path is the absolute path the bytes were read from.
		Path string
		// Bytes is the complete module image.
		Bytes []byte
	}

	// MalformedError is returned when bytes cannot be parsed as a valid
	// module image.
	MalformedError struct {
		Path   string
		Reason string
		Cause  error
	}
)

// Error implements the error interface.
func (e *MalformedError) Error() string {
	msg := fmt.Sprintf("malformed module %s: %s", e.Path, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *MalformedError) Unwrap() error { return e.Cause }

// Load reads the module at path fully into memory and validates its preamble.
//
// The file is opened with ordinary shared read access and is closed before
// Load returns. This is the contract that makes hot reload possible: an
// external build can replace the file while a previous load is still live.
func Load(path string) (*Image, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve module path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, abs)
	}
	if err != nil {
		return nil, fmt.Errorf("read module %s: %w", abs, err)
	}

	if err := validatePreamble(abs, data); err != nil {
		return nil, err
	}

	return &Image{Path: abs, Bytes: data}, nil
}

// Dir returns the directory containing the module file. Sibling dependency
// modules are probed relative to this directory.
func (img *Image) Dir() string {
	return filepath.Dir(img.Path)
}

// validatePreamble checks the magic number and binary version.
func validatePreamble(path string, data []byte) error {
	if len(data) < 8 {
		return &MalformedError{Path: path, Reason: fmt.Sprintf("image too short (%d bytes)", len(data))}
	}
	for i, b := range wasmMagic {
		if data[i] != b {
			return &MalformedError{Path: path, Reason: "bad magic number"}
		}
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != wasmVersion {
		return &MalformedError{Path: path, Reason: fmt.Sprintf("unsupported binary version %d", v)}
	}
	return nil
}
