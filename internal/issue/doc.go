// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error types with actionable context.
//
// ActionableError carries the failed operation, the resource involved, and
// fix suggestions, so CLI boundaries can render helpful messages without
// string-matching on error text.
package issue
