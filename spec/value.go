package spec

import "strconv"

// ValueKind classifies a literal token from a specification document. The
// classification is purely lexical: a quoted token is a string, a numeric
// token is an integer or float, and the boolean keywords are booleans. No
// host-runtime type reflection is involved.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueInteger
	ValueFloat
	ValueBoolean
	ValueString
)

func (k ValueKind) String() string {
	switch k {
	case ValueInteger:
		return "integer"
	case ValueFloat:
		return "float"
	case ValueBoolean:
		return "boolean"
	case ValueString:
		return "string"
	default:
		return "none"
	}
}

// Value is a literal from a specification document, usually an enumeration
// option value. Raw preserves the literal text exactly as written so that
// emitters can reproduce notations (such as parenthesized cast expressions)
// that do not round-trip through a typed representation.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Raw   string
}

// IntegerValue returns a Value holding n.
func IntegerValue(n int64) Value {
	return Value{Kind: ValueInteger, Int: n, Raw: strconv.FormatInt(n, 10)}
}

// IsInteger reports whether v holds an integer usable for arithmetic, such
// as an enumeration auto-increment or a constant array count.
func (v Value) IsInteger() bool {
	return v.Kind == ValueInteger
}

func (v Value) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	switch v.Kind {
	case ValueInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueString:
		return v.Str
	default:
		return ""
	}
}
