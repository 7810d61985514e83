// SPDX-License-Identifier: MPL-2.0

// Package hostmod holds the host's table of resident import namespaces.
//
// The dependency resolver consults this registry before probing the
// filesystem: a namespace served from here is reused by reference, which is
// what keeps host-shared definitions single-copy across reload cycles.
package hostmod
