package layout

import (
	"fmt"
	"strings"
)

// TermKind says what a runtime size term depends on.
type TermKind int

const (
	// TermFieldCount scales a runtime-read field value by a fixed element
	// width: the field holds an array count.
	TermFieldCount TermKind = iota
	// TermFieldSize reads a bit width directly from a runtime field.
	TermFieldSize
	// TermPacketSize defers to another packet's size computation.
	TermPacketSize
)

// Term is one runtime-dependent contribution to a packet's size.
type Term struct {
	Kind TermKind
	// Name is the referenced field name (TermFieldCount, TermFieldSize) or
	// packet name (TermPacketSize).
	Name string
	// ScaleBits is the number of bits contributed per unit of the runtime
	// value. It is the element width for counts and 1 for raw bit sizes.
	ScaleBits uint64
}

// SizeExpression is the compiled size of a packet: a constant number of
// bits plus zero or more runtime-dependent terms. An expression with no
// terms is a compile-time constant. An unresolved size is never silently
// zero; packets whose sizes cannot be expressed fail to compile instead.
type SizeExpression struct {
	ConstBits uint64
	Terms     []Term
}

// Constant returns the total size in bits if it is fully known at compile
// time.
func (s SizeExpression) Constant() (bits uint64, ok bool) {
	if len(s.Terms) > 0 {
		return 0, false
	}
	return s.ConstBits, true
}

// ConstantBytes returns the total size in whole bytes if it is known at
// compile time. Bit totals are rounded up to the next byte.
func (s SizeExpression) ConstantBytes() (uint64, bool) {
	bits, ok := s.Constant()
	if !ok {
		return 0, false
	}
	return (bits + 7) / 8, true
}

// RuntimeDependent reports whether evaluating the size requires values only
// known at unpack time.
func (s SizeExpression) RuntimeDependent() bool {
	return len(s.Terms) > 0
}

// DependsOn reports whether the expression contains a term of the given
// kind naming the given field or packet.
func (s SizeExpression) DependsOn(kind TermKind, name string) bool {
	for _, t := range s.Terms {
		if t.Kind == kind && t.Name == name {
			return true
		}
	}
	return false
}

func (s SizeExpression) plusConst(bits uint64) SizeExpression {
	s.ConstBits += bits
	return s
}

func (s SizeExpression) plusTerm(t Term) SizeExpression {
	terms := make([]Term, len(s.Terms), len(s.Terms)+1)
	copy(terms, s.Terms)
	s.Terms = append(terms, t)
	return s
}

// plus composes another expression into this one, used when a substructure
// contributes its own (possibly runtime-dependent) size.
func (s SizeExpression) plus(o SizeExpression) SizeExpression {
	s.ConstBits += o.ConstBits
	if len(o.Terms) > 0 {
		terms := make([]Term, 0, len(s.Terms)+len(o.Terms))
		terms = append(terms, s.Terms...)
		terms = append(terms, o.Terms...)
		s.Terms = terms
	}
	return s
}

// String renders the expression in bits for diagnostics, e.g.
// "88 + 16*count + size(header)".
func (s SizeExpression) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", s.ConstBits)
	for _, t := range s.Terms {
		switch t.Kind {
		case TermPacketSize:
			fmt.Fprintf(&b, " + size(%s)", t.Name)
		case TermFieldSize:
			fmt.Fprintf(&b, " + %s", t.Name)
		default:
			fmt.Fprintf(&b, " + %d*%s", t.ScaleBits, t.Name)
		}
	}
	return b.String()
}
