// SPDX-License-Identifier: MPL-2.0

// Package modimage loads command library module images from disk.
//
// The loader reads the whole file into memory in a single call and never
// keeps a file handle open, which is what allows an external build to
// overwrite the library while a previous session is still winding down.
//
// The package also owns the command metadata convention: a TOML manifest
// embedded in the module as the "molt:manifest" custom section. The custom
// section walk is implemented here directly because the runtime bindings do
// not expose custom sections.
//
// File organization:
//   - image.go: byte-stream loading and preamble validation
//   - section.go: custom section scanning and appending
//   - manifest.go: manifest schema, decoding, and lookup helpers
package modimage
