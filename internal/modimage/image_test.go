// SPDX-License-Identifier: MPL-2.0

package modimage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// minimalImage returns the smallest valid module image: magic plus version.
func minimalImage() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
}

func writeModule(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write module fixture: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeModule(t, "cmdlib.wasm", minimalImage())

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !filepath.IsAbs(img.Path) {
		t.Errorf("Path = %q, want absolute", img.Path)
	}
	if len(img.Bytes) != 8 {
		t.Errorf("Bytes length = %d, want 8", len(img.Bytes))
	}
	if img.Dir() != filepath.Dir(path) {
		t.Errorf("Dir() = %q, want %q", img.Dir(), filepath.Dir(path))
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.wasm"))
	if !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("Load() error = %v, want ErrModuleNotFound", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty file", nil},
		{"too short", []byte{0x00, 0x61, 0x73}},
		{"bad magic", []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x00, 0x00, 0x00}},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeModule(t, "bad.wasm", tt.data)
			_, err := Load(path)
			var malformed *MalformedError
			if !errors.As(err, &malformed) {
				t.Fatalf("Load() error = %v, want *MalformedError", err)
			}
			if malformed.Path != path {
				t.Errorf("MalformedError.Path = %q, want %q", malformed.Path, path)
			}
		})
	}
}

// The loader's whole reason for existing: the file must be rebuildable
// while a previously loaded image is still in use.
func TestLoad_FileReplaceableAfterLoad(t *testing.T) {
	path := writeModule(t, "cmdlib.wasm", minimalImage())

	first, err := Load(path)
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}

	rebuilt := appendSection(minimalImage(), "build.info", []byte("v2"))
	if err := os.WriteFile(path, rebuilt, 0o644); err != nil {
		t.Fatalf("rebuild while loaded: %v", err)
	}

	second, err := Load(path)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if len(first.Bytes) == len(second.Bytes) {
		t.Error("second load did not observe the rebuilt image")
	}
	if _, ok := second.CustomSection("build.info"); !ok {
		t.Error("rebuilt section missing from second load")
	}
	if _, ok := first.CustomSection("build.info"); ok {
		t.Error("first image mutated by rebuild; loads must be independent copies")
	}
}
