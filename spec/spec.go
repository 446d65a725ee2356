package spec

import "strings"

// Specification is the root of a loaded document: document-level metadata,
// enumerations, and packet definitions, all in declaration order.
type Specification struct {
	Title         string
	Description   string
	Version       string
	Date          string
	Author        string
	Documentation string
	Metadata      string

	// Endianness is the document-level default byte order, or
	// EndianUnspecified when the document does not declare one.
	Endianness Endianness

	Enums   []*Enumeration
	Packets []*Packet

	Pos SourcePos
}

// Packet returns the first packet declared with the given name, or nil.
func (s *Specification) Packet(name string) *Packet {
	for _, p := range s.Packets {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Enum returns the first enumeration declared with the given name, or nil.
func (s *Specification) Enum(name string) *Enumeration {
	for _, e := range s.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Enumeration is a named set of options. Its type, when declared, is a
// primitive type name from the type catalog; when absent, option types are
// inferred from their literal values.
type Enumeration struct {
	Name        string
	Title       string
	Description string
	Type        string
	Options     []*Option
	Pos         SourcePos
}

// Option returns the first option declared with the given name, or nil.
func (e *Enumeration) Option(name string) *Option {
	for _, o := range e.Options {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Option is one member of an enumeration. Value is nil when the option's
// value is implicit (previous option's value plus one).
type Option struct {
	Name        string
	Title       string
	Description string
	Type        string
	Value       *Value
	Pos         SourcePos
}

// Packet is one binary packet definition: an ordered list of fields.
type Packet struct {
	Name        string
	Title       string
	Description string
	Endianness  Endianness
	Fields      []*Field
	Pos         SourcePos
}

// Field returns the first field declared with the given name, or nil.
func (p *Packet) Field(name string) *Field {
	for _, f := range p.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Field is one member of a packet. Type is either a primitive type name or
// a document reference of the form "#/packets/<name>", which makes the field
// an instance of another packet (a substructure). Count and Size, when
// present, are either literal integers or references to another field's
// value.
type Field struct {
	Name        string
	Title       string
	Description string
	Type        string
	Count       *Attr
	Size        *Attr
	Endianness  Endianness
	Pos         SourcePos
}

// PacketRef returns the packet name a substructure field refers to. The
// second return value is false for ordinary primitive fields.
func (f *Field) PacketRef() (string, bool) {
	if !strings.HasPrefix(f.Type, "#/") {
		return "", false
	}
	return f.Type[strings.LastIndexByte(f.Type, '/')+1:], true
}

// Attr is a field attribute (count or size) that is either a literal
// integer or a reference into the document at another field's value.
type Attr struct {
	// Ref is the document path of the referenced value, including the
	// leading "#/". Empty for literal attributes.
	Ref string
	// Lit is the literal value. Meaningful only when Ref is empty.
	Lit int64
	Pos SourcePos
}

// IsRef reports whether the attribute is a reference rather than a literal.
func (a *Attr) IsRef() bool {
	return a.Ref != ""
}
