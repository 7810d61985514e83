// SPDX-License-Identifier: MPL-2.0

// Package invoke performs late-bound dispatch of catalog entries.
//
// The invoker re-resolves the target type and member by their fully
// qualified names at call time rather than reusing any live handle from
// catalog construction, which keeps discovery and dispatch independently
// testable. Its three failure modes are deliberately distinct: a structural
// failure to find or bind the member, a failure to construct a receiver,
// and a failure raised by the invoked code itself.
package invoke

import (
	"errors"
	"fmt"

	"molt-cli/internal/catalog"
	"molt-cli/internal/modimage"
)

type (
	// Thunk is a late-bound callable export.
	Thunk = func(args ...interface{}) (interface{}, error)

	// Module is the slice of a loaded module the invoker needs: its
	// metadata and its export table.
	Module interface {
		Manifest() *modimage.Manifest
		Thunk(symbol string) (Thunk, error)
	}

	// DispatchError is a structural failure: the member could not be found
	// or bound at all. This is never the invoked code's fault.
	DispatchError struct {
		TypeName   string
		MemberName string
		Cause      error
	}

	// ConstructionError is returned when a non-static member's declaring
	// type has no usable parameterless construction path.
	ConstructionError struct {
		TypeName string
		Cause    error
	}

	// TargetError wraps a failure raised by the invoked code itself. The
	// inner message is preserved and must be surfaced, never swallowed.
	TargetError struct {
		TypeName   string
		MemberName string
		Cause      error
	}
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	msg := fmt.Sprintf("cannot dispatch %s.%s: member not found or unbindable", e.TypeName, e.MemberName)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *DispatchError) Unwrap() error { return e.Cause }

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	msg := fmt.Sprintf("cannot construct instance of %s: no parameterless construction path", e.TypeName)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ConstructionError) Unwrap() error { return e.Cause }

// Error implements the error interface.
func (e *TargetError) Error() string {
	return fmt.Sprintf("command %s.%s failed: %v", e.TypeName, e.MemberName, e.Cause)
}

// Unwrap returns the invoked code's own error.
func (e *TargetError) Unwrap() error { return e.Cause }

// Run dispatches one catalog entry against a loaded module.
//
// Static members are called with no arguments. Non-static members get a
// receiver from the declaring type's parameterless constructor first; the
// receiver is the only argument passed. Whatever the invoked code does to
// host state is its own business; Run itself has no side effects beyond
// construction and the call.
func Run(mod Module, desc catalog.Descriptor) error {
	typ, ok := mod.Manifest().FindType(desc.FullyQualifiedTypeName)
	if !ok {
		return &DispatchError{
			TypeName:   desc.FullyQualifiedTypeName,
			MemberName: desc.MemberName,
			Cause:      errors.New("declaring type not present in module metadata"),
		}
	}

	member, ok := typ.FindMember(desc.MemberName)
	if !ok {
		return &DispatchError{
			TypeName:   desc.FullyQualifiedTypeName,
			MemberName: desc.MemberName,
			Cause:      errors.New("member not present on declaring type"),
		}
	}

	thunk, err := mod.Thunk(member.Symbol)
	if err != nil {
		return &DispatchError{
			TypeName:   desc.FullyQualifiedTypeName,
			MemberName: desc.MemberName,
			Cause:      err,
		}
	}

	var args []interface{}
	if !member.Static {
		receiver, err := construct(mod, typ)
		if err != nil {
			return err
		}
		if receiver != nil {
			args = append(args, receiver)
		}
	}

	if _, err := thunk(args...); err != nil {
		return &TargetError{
			TypeName:   desc.FullyQualifiedTypeName,
			MemberName: desc.MemberName,
			Cause:      err,
		}
	}

	return nil
}

// construct produces a receiver for a non-static member by calling the
// declaring type's parameterless constructor export.
func construct(mod Module, typ *modimage.TypeInfo) (interface{}, error) {
	if typ.Constructor == "" {
		return nil, &ConstructionError{TypeName: typ.FullName}
	}

	ctor, err := mod.Thunk(typ.Constructor)
	if err != nil {
		return nil, &ConstructionError{TypeName: typ.FullName, Cause: err}
	}

	receiver, err := ctor()
	if err != nil {
		return nil, &ConstructionError{TypeName: typ.FullName, Cause: err}
	}

	return receiver, nil
}
