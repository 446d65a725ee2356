package layout

import (
	"strings"

	"github.com/structspec/structspec/spec"
)

// valueSelector is the trailing path segment that marks a reference as
// pointing at an element's value rather than at the element itself.
const valueSelector = "/value"

// Reference is a resolved count/size attribute reference. Field is always
// the referenced element's name, used for runtime binding. Const is non-nil
// only when the reference points into a fixed enumeration and is therefore
// a compile-time constant.
type Reference struct {
	Field string
	Const *spec.Value
}

// resolveReference resolves a JSON-Pointer-style document path of the form
// "#/enums/<enum>/options/<option>/value" or
// "#/packets/<packet>/structure/<field>/value".
//
// A reference into an enumeration resolves to the option's compiled value.
// A reference into a packet resolves to the field name only; the value is
// read at unpack time, which is a valid runtime binding, not a failure.
// Any path that does not land on an existing element is an
// ErrUnresolvableReference.
func (c *compiler) resolveReference(ref string, pos spec.SourcePos, packet, field string) (Reference, *Error) {
	path, ok := strings.CutPrefix(ref, "#/")
	if !ok {
		return Reference{}, errorf(ErrUnresolvableReference, pos, packet, field,
			"reference %q does not start with \"#/\"", ref)
	}
	path = strings.TrimSuffix(path, valueSelector)
	segs := strings.Split(path, "/")
	name := segs[len(segs)-1]

	switch {
	case segs[0] == "enums" && len(segs) == 4 && segs[2] == "options":
		enum := c.set.Enum(segs[1])
		if enum == nil {
			return Reference{}, errorf(ErrUnresolvableReference, pos, packet, field,
				"reference %q points into unknown enumeration %q", ref, segs[1])
		}
		opt := enum.Option(name)
		if opt == nil {
			return Reference{}, errorf(ErrUnresolvableReference, pos, packet, field,
				"enumeration %q has no option %q", segs[1], name)
		}
		v := opt.Value
		return Reference{Field: name, Const: &v}, nil
	case segs[0] == "packets" && len(segs) == 4 && segs[2] == "structure":
		pkt := c.doc.Packet(segs[1])
		if pkt == nil {
			return Reference{}, errorf(ErrUnresolvableReference, pos, packet, field,
				"reference %q points into unknown packet %q", ref, segs[1])
		}
		if pkt.Field(name) == nil {
			return Reference{}, errorf(ErrUnresolvableReference, pos, packet, field,
				"packet %q has no field %q", segs[1], name)
		}
		return Reference{Field: name}, nil
	}
	return Reference{}, errorf(ErrUnresolvableReference, pos, packet, field,
		"reference %q does not resolve to an enumeration option or packet field", ref)
}
