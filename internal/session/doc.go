// SPDX-License-Identifier: MPL-2.0

// Package session drives the load, catalog, pick, invoke, unload cycle.
//
// A session owns exactly one module generation: the loader hands it an
// isolated handle, and the unload coordinator releases that handle at the
// end of the session regardless of how selection or invocation went.
// Collaborators are interfaces so tests can inject faults at every phase
// and assert that teardown still happens exactly once.
package session
