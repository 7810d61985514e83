// SPDX-License-Identifier: MPL-2.0

package modimage

import (
	"github.com/pelletier/go-toml/v2"
)

// ManifestSectionName is the custom section carrying command metadata.
const ManifestSectionName = "molt:manifest"

// ManifestSchema is the manifest schema version this build understands.
const ManifestSchema = 1

type (
	// Manifest describes the types and members a command library exposes.
	// It is emitted by the library build and embedded in the module image
	// as a custom section, so the metadata travels with the binary it
	// describes.
	Manifest struct {
		Schema int        `toml:"schema"`
		Types  []TypeInfo `toml:"types,omitempty"`
	}

	// TypeInfo describes one declaring type inside the library.
	TypeInfo struct {
		// Name is the simple (unqualified) type name.
		Name string `toml:"name"`
		// FullName is the fully qualified type name.
		FullName string `toml:"full_name"`
		// Constructor is the export symbol of the type's parameterless
		// constructor. Empty when the type has none; members of such a
		// type must be static to be invocable.
		Constructor string `toml:"constructor,omitempty"`
		// Members lists the type's members, invocable or not.
		Members []MemberInfo `toml:"members,omitempty"`
	}

	// MemberInfo describes one member of a declaring type.
	MemberInfo struct {
		// Name is the member name.
		Name string `toml:"name"`
		// Symbol is the export symbol bound to this member.
		Symbol string `toml:"symbol"`
		// Static reports whether the member is invocable without a receiver.
		Static bool `toml:"static"`
		// Attributes holds the member's attached metadata markers.
		Attributes []Attribute `toml:"attributes,omitempty"`
	}

	// Attribute is a named metadata marker with ordered string properties.
	// Property order matters: display-name resolution takes the first
	// non-empty value, whichever property happens to carry it.
	Attribute struct {
		Name       string     `toml:"name"`
		Properties []Property `toml:"properties,omitempty"`
	}

	// Property is one named string value on an Attribute.
	Property struct {
		Name  string `toml:"name"`
		Value string `toml:"value"`
	}
)

// Manifest decodes the manifest custom section of the image.
// A module without a manifest section yields an empty manifest: it is a
// valid library that simply exposes no commands.
func (img *Image) Manifest() (*Manifest, error) {
	body, ok := img.CustomSection(ManifestSectionName)
	if !ok {
		return &Manifest{Schema: ManifestSchema}, nil
	}

	var m Manifest
	if err := toml.Unmarshal(body, &m); err != nil {
		return nil, &MalformedError{Path: img.Path, Reason: "undecodable manifest section", Cause: err}
	}
	return &m, nil
}

// WithManifest returns a copy of the raw module image with the manifest
// appended as a custom section. Intended for library packaging tools and
// test fixtures.
func WithManifest(image []byte, m *Manifest) ([]byte, error) {
	body, err := toml.Marshal(m)
	if err != nil {
		return nil, err
	}
	return appendSection(image, ManifestSectionName, body), nil
}

// FindType returns the type with the given fully qualified name.
func (m *Manifest) FindType(fullName string) (*TypeInfo, bool) {
	for i := range m.Types {
		if m.Types[i].FullName == fullName {
			return &m.Types[i], true
		}
	}
	return nil, false
}

// FindMember returns the member with the given name.
func (t *TypeInfo) FindMember(name string) (*MemberInfo, bool) {
	for i := range t.Members {
		if t.Members[i].Name == name {
			return &t.Members[i], true
		}
	}
	return nil, false
}

// Attribute returns the member's attribute with the given name, matched
// case-sensitively against the simple attribute name.
func (mem *MemberInfo) Attribute(name string) (*Attribute, bool) {
	for i := range mem.Attributes {
		if mem.Attributes[i].Name == name {
			return &mem.Attributes[i], true
		}
	}
	return nil, false
}

// FirstStringProperty returns the value of the first property carrying a
// non-empty string. This mirrors the metadata convention's name-resolution
// heuristic; on attributes with several string properties it can pick an
// unintended one, and callers are expected to live with that.
func (a *Attribute) FirstStringProperty() (string, bool) {
	for _, p := range a.Properties {
		if p.Value != "" {
			return p.Value, true
		}
	}
	return "", false
}
