// SPDX-License-Identifier: MPL-2.0

package loadctx

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Hand-assembled module images for tests. All functions share the single
// nullary type () -> () so imports and exports stay link-compatible.

type funcImport struct {
	module string
	name   string
}

func vecBytes(b []byte) []byte {
	out := binary.AppendUvarint(nil, uint64(len(b)))
	return append(out, b...)
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = binary.AppendUvarint(out, uint64(len(payload)))
	return append(out, payload...)
}

// buildModule assembles a valid module that imports the given nullary
// functions and exports the given nullary no-op functions.
func buildModule(imports []funcImport, exports []string) []byte {
	img := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	// Type section: one functype () -> ().
	img = append(img, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)

	if len(imports) > 0 {
		payload := binary.AppendUvarint(nil, uint64(len(imports)))
		for _, imp := range imports {
			payload = append(payload, vecBytes([]byte(imp.module))...)
			payload = append(payload, vecBytes([]byte(imp.name))...)
			payload = append(payload, 0x00, 0x00) // func import, type index 0
		}
		img = append(img, section(2, payload)...)
	}

	if len(exports) > 0 {
		// Function section: all local functions use type index 0.
		payload := binary.AppendUvarint(nil, uint64(len(exports)))
		for range exports {
			payload = append(payload, 0x00)
		}
		img = append(img, section(3, payload)...)

		// Export section: local function indices follow the imports.
		payload = binary.AppendUvarint(nil, uint64(len(exports)))
		for i, name := range exports {
			payload = append(payload, vecBytes([]byte(name))...)
			payload = append(payload, 0x00) // func export
			payload = binary.AppendUvarint(payload, uint64(len(imports)+i))
		}
		img = append(img, section(7, payload)...)

		// Code section: empty no-op bodies.
		payload = binary.AppendUvarint(nil, uint64(len(exports)))
		for range exports {
			payload = append(payload, 0x02, 0x00, 0x0B)
		}
		img = append(img, section(10, payload)...)
	}

	return img
}

func writeWasm(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write wasm fixture %s: %v", name, err)
	}
	return path
}
