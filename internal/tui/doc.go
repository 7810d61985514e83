// SPDX-License-Identifier: MPL-2.0

// Package tui provides the interactive terminal components.
//
// The components are generic over their row data; callers adapt their own
// types to rows and map the selection index back. Cancellation (esc, q,
// ctrl+c) is a normal outcome, reported as index -1 with a nil error.
package tui
