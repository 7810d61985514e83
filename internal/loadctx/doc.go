// SPDX-License-Identifier: MPL-2.0

// Package loadctx owns the isolated, reclaimable execution context of one
// load cycle.
//
// A Context wraps a dedicated runtime engine and store holding exactly one
// top-level module plus any sibling dependencies the resolver pulled in.
// RequestUnload releases all of it deterministically, which is what frees
// the command library file for the next rebuild.
//
// Dependency resolution follows a fixed fallback chain per import
// namespace: reuse a host-resident namespace by reference, else probe for a
// sibling module file next to the top-level module, else leave the import
// unresolved and let the runtime's missing-import error propagate. Probe
// failures never crash the loader.
package loadctx
