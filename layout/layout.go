package layout

import (
	"github.com/structspec/structspec/spec"
	"github.com/structspec/structspec/types"
)

// Set is the compiled output for one specification document: the resolved
// enumerations in declaration order and the layouts of every packet that
// compiled successfully, ordered so that substructures precede the packets
// containing them. Packets that failed to compile are absent; a Set never
// contains a partial layout.
type Set struct {
	Spec    *spec.Specification
	Enums   []*Enum
	Packets []*Layout

	byEnum   map[string]*Enum
	byPacket map[string]*Layout
}

// Packet returns the compiled layout for the named packet, or nil if the
// packet does not exist or failed to compile.
func (s *Set) Packet(name string) *Layout {
	return s.byPacket[name]
}

// Enum returns the compiled enumeration with the given name, or nil.
func (s *Set) Enum(name string) *Enum {
	return s.byEnum[name]
}

func (s *Set) addEnum(e *Enum) {
	if s.byEnum == nil {
		s.byEnum = map[string]*Enum{}
	}
	if _, ok := s.byEnum[e.Name]; !ok {
		s.byEnum[e.Name] = e
		s.Enums = append(s.Enums, e)
	}
}

func (s *Set) addPacket(l *Layout) {
	if s.byPacket == nil {
		s.byPacket = map[string]*Layout{}
	}
	if _, ok := s.byPacket[l.Name]; !ok {
		s.byPacket[l.Name] = l
		s.Packets = append(s.Packets, l)
	}
}

// Layout is the fully resolved wire layout of one packet: an ordered
// sequence of segments plus the packet's size expression.
type Layout struct {
	Packet *spec.Packet
	Name   string
	// Endianness is the packet-level resolved byte order (packet override,
	// else document default). Individual segments may still override it.
	Endianness spec.Endianness
	Segments   []Segment
	Size       SizeExpression
}

// Segment is one element of a layout. The concrete types are Primitive,
// BitfieldGroup, Array, Substructure, and Padding.
type Segment interface {
	isSegment()
}

// Primitive is a single byte-aligned field. Bits is the resolved width,
// which equals the type's natural width unless the field carried a
// byte-multiple size override. When the width is only known at unpack time
// (the size attribute references a runtime field), SizeRef names that field
// and Bits is zero.
type Primitive struct {
	Field      string
	Type       types.Info
	Bits       uint32
	SizeRef    string
	Endianness spec.Endianness
}

// BitfieldSlot is one field packed into a bitfield group. Shift is the bit
// offset of the slot within its storage unit: bit positions are purely
// sequential, each slot consuming the next Bits bits starting from bit 0 in
// declaration order.
type BitfieldSlot struct {
	Field    string
	Bits     uint32
	Category types.Category
	Shift    uint32
}

// Mask returns the unshifted extraction mask for the slot, so the slot
// value of storage unit u is (u >> Shift) & Mask().
func (s BitfieldSlot) Mask() uint64 {
	if s.Bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << s.Bits) - 1
}

// BitfieldGroup is a run of sub-byte-aligned fields sharing one storage
// unit of 8, 16, 32, or 64 bits.
type BitfieldGroup struct {
	Slots       []BitfieldSlot
	StorageBits uint32
	Endianness  spec.Endianness
}

// Array is a repeated field. Count holds the element count when it is a
// compile-time constant; otherwise CountRef names the runtime field that
// supplies it.
type Array struct {
	Field      string
	Elem       types.Info
	ElemBits   uint32
	Count      uint64
	CountRef   string
	Endianness spec.Endianness
}

// HasConstCount reports whether the element count is known at compile time.
func (a *Array) HasConstCount() bool {
	return a.CountRef == ""
}

// Substructure is a field whose type is another packet. The referenced
// layout is composed, not inlined: Size is the referenced packet's own
// size expression.
type Substructure struct {
	Field  string
	Packet string
	Size   SizeExpression
}

// Padding contributes to a packet's size without producing a named value.
type Padding struct {
	Bits uint32
}

func (*Primitive) isSegment()     {}
func (*BitfieldGroup) isSegment() {}
func (*Array) isSegment()         {}
func (*Substructure) isSegment()  {}
func (*Padding) isSegment()       {}
