package layout

import (
	"fmt"

	"github.com/structspec/structspec/reporter"
	"github.com/structspec/structspec/spec"
)

// ErrorKind is the taxonomy of compile-time failures. Every failure is
// fatal for the packet (or enumeration) it occurs in, but compilation of
// the rest of the document continues so that all problems surface in one
// pass.
type ErrorKind int

const (
	ErrUnknownType ErrorKind = iota
	ErrUnresolvableReference
	ErrBitfieldOverflow
	ErrCyclicSubstructure
	ErrDuplicateFieldName
	ErrDuplicatePacketName
	ErrInvalidEnumerationSequence
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownType:
		return "unknown type"
	case ErrUnresolvableReference:
		return "unresolvable reference"
	case ErrBitfieldOverflow:
		return "bitfield overflow"
	case ErrCyclicSubstructure:
		return "cyclic substructure"
	case ErrDuplicateFieldName:
		return "duplicate field name"
	case ErrDuplicatePacketName:
		return "duplicate packet name"
	case ErrInvalidEnumerationSequence:
		return "invalid enumeration sequence"
	default:
		return "unknown error"
	}
}

// Error is a compile error attributed to a packet and, when applicable, a
// field within it. It satisfies reporter.ErrorWithPos so it can flow
// through a reporter.Handler like any other positioned error.
type Error struct {
	Kind   ErrorKind
	Packet string
	Field  string
	Pos    spec.SourcePos

	underlying error
}

func errorf(kind ErrorKind, pos spec.SourcePos, packet, field, format string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Packet:     packet,
		Field:      field,
		Pos:        pos,
		underlying: fmt.Errorf(format, args...),
	}
}

func (e *Error) Error() string {
	switch {
	case e.Packet != "" && e.Field != "":
		return fmt.Sprintf("%s: packet %q, field %q: %s: %v", e.Pos, e.Packet, e.Field, e.Kind, e.underlying)
	case e.Packet != "":
		return fmt.Sprintf("%s: packet %q: %s: %v", e.Pos, e.Packet, e.Kind, e.underlying)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Pos, e.Kind, e.underlying)
	}
}

func (e *Error) GetPosition() spec.SourcePos {
	return e.Pos
}

func (e *Error) Unwrap() error {
	return e.underlying
}

var _ reporter.ErrorWithPos = (*Error)(nil)
