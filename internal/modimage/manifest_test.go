// SPDX-License-Identifier: MPL-2.0

package modimage

import (
	"errors"
	"testing"
)

func markedManifest() *Manifest {
	return &Manifest{
		Schema: ManifestSchema,
		Types: []TypeInfo{
			{
				Name:        "Bar",
				FullName:    "Foo.Bar",
				Constructor: "Foo.Bar.#ctor",
				Members: []MemberInfo{
					{
						Name:   "HELLO",
						Symbol: "Foo.Bar.HELLO",
						Attributes: []Attribute{
							{
								Name: "CommandMethod",
								Properties: []Property{
									{Name: "GlobalName", Value: "HELLO"},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestManifest_RoundTrip(t *testing.T) {
	data, err := WithManifest(minimalImage(), markedManifest())
	if err != nil {
		t.Fatalf("WithManifest() error = %v", err)
	}

	img := &Image{Path: "/tmp/cmdlib.wasm", Bytes: data}
	m, err := img.Manifest()
	if err != nil {
		t.Fatalf("Manifest() error = %v", err)
	}

	typ, ok := m.FindType("Foo.Bar")
	if !ok {
		t.Fatal("FindType(Foo.Bar) not found")
	}
	if typ.Name != "Bar" || typ.Constructor != "Foo.Bar.#ctor" {
		t.Errorf("type = %+v", typ)
	}

	mem, ok := typ.FindMember("HELLO")
	if !ok {
		t.Fatal("FindMember(HELLO) not found")
	}
	if mem.Symbol != "Foo.Bar.HELLO" {
		t.Errorf("Symbol = %q", mem.Symbol)
	}

	attr, ok := mem.Attribute("CommandMethod")
	if !ok {
		t.Fatal("Attribute(CommandMethod) not found")
	}
	if name, ok := attr.FirstStringProperty(); !ok || name != "HELLO" {
		t.Errorf("FirstStringProperty() = %q, %v", name, ok)
	}
}

func TestManifest_MissingSectionIsEmpty(t *testing.T) {
	img := &Image{Path: "/tmp/cmdlib.wasm", Bytes: minimalImage()}
	m, err := img.Manifest()
	if err != nil {
		t.Fatalf("Manifest() error = %v", err)
	}
	if len(m.Types) != 0 {
		t.Errorf("Types = %v, want empty", m.Types)
	}
}

func TestManifest_UndecodableSection(t *testing.T) {
	img := &Image{
		Path:  "/tmp/cmdlib.wasm",
		Bytes: appendSection(minimalImage(), ManifestSectionName, []byte("= not toml =")),
	}

	_, err := img.Manifest()
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("Manifest() error = %v, want *MalformedError", err)
	}
}

func TestAttribute_LookupIsCaseSensitive(t *testing.T) {
	mem := &MemberInfo{
		Name:       "Run",
		Attributes: []Attribute{{Name: "commandmethod"}},
	}
	if _, ok := mem.Attribute("CommandMethod"); ok {
		t.Error("Attribute() matched case-insensitively; marker lookup must be case-sensitive")
	}
}

func TestAttribute_FirstStringProperty(t *testing.T) {
	tests := []struct {
		name string
		attr Attribute
		want string
		ok   bool
	}{
		{
			name: "skips empty values",
			attr: Attribute{Properties: []Property{
				{Name: "Description", Value: ""},
				{Name: "GlobalName", Value: "DRAW"},
			}},
			want: "DRAW",
			ok:   true,
		},
		{
			name: "takes first non-empty even if unintended",
			attr: Attribute{Properties: []Property{
				{Name: "Tooltip", Value: "Draws a line"},
				{Name: "GlobalName", Value: "DRAW"},
			}},
			want: "Draws a line",
			ok:   true,
		},
		{
			name: "no properties",
			attr: Attribute{},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.attr.FirstStringProperty()
			if got != tt.want || ok != tt.ok {
				t.Errorf("FirstStringProperty() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
