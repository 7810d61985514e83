// SPDX-License-Identifier: MPL-2.0

// Package catalog builds the flat command catalog of a loaded library module.
//
// The builder walks every type and member recorded in the module manifest,
// keeps the members carrying the command marker, and produces a
// deterministically ordered catalog for the selection surface.
package catalog

import (
	"sort"
	"strings"

	"molt-cli/internal/modimage"
)

// MarkerAttribute is the metadata marker identifying an invocable command
// member, matched case-sensitively against the simple attribute name.
const MarkerAttribute = "CommandMethod"

type (
	// Descriptor identifies one invocable entry point inside a module.
	// Immutable once built; it carries names only, never live handles, so
	// the dispatch path stays decoupled from catalog construction.
	Descriptor struct {
		// CommandName is the display name shown to the operator.
		CommandName string
		// DeclaringTypeName is the simple name of the declaring type.
		DeclaringTypeName string
		// FullyQualifiedTypeName is the full name of the declaring type.
		FullyQualifiedTypeName string
		// MemberName is the name of the marked member.
		MemberName string
	}

	// Catalog is an ordered sequence of command descriptors, sorted
	// case-insensitively by command name. Names are not required to be
	// unique; ties are ordered by declaring type name.
	Catalog []Descriptor
)

// Build produces the command catalog of a loaded module image.
//
// Every type and every member is inspected regardless of the member's
// static flag. A type entry that cannot be enumerated (no usable name) is
// skipped and the walk continues; a partial load never aborts the whole
// catalog. A module with no marked members yields an empty, valid catalog.
func Build(img *modimage.Image) (Catalog, error) {
	manifest, err := img.Manifest()
	if err != nil {
		return nil, err
	}
	return FromManifest(manifest), nil
}

// FromManifest builds the catalog from an already-decoded manifest.
func FromManifest(m *modimage.Manifest) Catalog {
	var cat Catalog

	for i := range m.Types {
		typ := &m.Types[i]
		if typ.FullName == "" {
			// Unenumerable type entry. Skip it, keep going.
			continue
		}

		declaring := typ.Name
		if declaring == "" {
			declaring = simpleName(typ.FullName)
		}

		for j := range typ.Members {
			mem := &typ.Members[j]
			if mem.Name == "" {
				continue
			}

			marker, ok := mem.Attribute(MarkerAttribute)
			if !ok {
				continue
			}

			display := mem.Name
			if name, ok := marker.FirstStringProperty(); ok {
				display = name
			}

			cat = append(cat, Descriptor{
				CommandName:            display,
				DeclaringTypeName:      declaring,
				FullyQualifiedTypeName: typ.FullName,
				MemberName:             mem.Name,
			})
		}
	}

	sort.SliceStable(cat, func(i, j int) bool {
		ni, nj := strings.ToLower(cat[i].CommandName), strings.ToLower(cat[j].CommandName)
		if ni != nj {
			return ni < nj
		}
		if cat[i].DeclaringTypeName != cat[j].DeclaringTypeName {
			return cat[i].DeclaringTypeName < cat[j].DeclaringTypeName
		}
		return cat[i].FullyQualifiedTypeName < cat[j].FullyQualifiedTypeName
	})

	return cat
}

// Resolve maps an operator's textual choice back to a descriptor,
// case-insensitively. With duplicate command names the declaring type name
// order breaks the tie: the first match in catalog order wins.
func (c Catalog) Resolve(commandName string) (Descriptor, bool) {
	for _, d := range c {
		if strings.EqualFold(d.CommandName, commandName) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Find returns the descriptor for an exact fully-qualified-type/member pair.
// Used by the repeat-last path, which records identities rather than display
// names.
func (c Catalog) Find(fullyQualifiedTypeName, memberName string) (Descriptor, bool) {
	for _, d := range c {
		if d.FullyQualifiedTypeName == fullyQualifiedTypeName && d.MemberName == memberName {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Headers returns the column titles of the selection surface.
func Headers() []string {
	return []string{"Command", "Type", "Method", "Full Name"}
}

// Rows projects the catalog into the tabular structure handed to the
// selection surface, one row per descriptor in catalog order.
func (c Catalog) Rows() [][]string {
	rows := make([][]string, len(c))
	for i, d := range c {
		rows[i] = []string{d.CommandName, d.DeclaringTypeName, d.MemberName, d.FullyQualifiedTypeName}
	}
	return rows
}

// simpleName returns the last dot-separated segment of a full type name.
func simpleName(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
