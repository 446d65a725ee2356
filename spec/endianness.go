package spec

// Endianness is the byte order of a field, packet, or document. It is
// inherited: a field without an explicit endianness uses its packet's, a
// packet without one uses the document default, and a document without one
// leaves the order unspecified (emitters then use host-native order).
type Endianness int

const (
	EndianUnspecified Endianness = iota
	EndianBig
	EndianLittle
	EndianNetwork
	EndianNative
)

var endianNames = map[string]Endianness{
	"big":     EndianBig,
	"little":  EndianLittle,
	"network": EndianNetwork,
	"native":  EndianNative,
}

// ParseEndianness maps the textual endianness names used in specification
// documents to their Endianness values. The second return value is false if
// the name is not one of "big", "little", "network", or "native".
func ParseEndianness(name string) (Endianness, bool) {
	e, ok := endianNames[name]
	return e, ok
}

func (e Endianness) String() string {
	switch e {
	case EndianBig:
		return "big"
	case EndianLittle:
		return "little"
	case EndianNetwork:
		return "network"
	case EndianNative:
		return "native"
	default:
		return "unspecified"
	}
}

// Or returns e unless it is unspecified, in which case it returns fallback.
// This implements the field -> packet -> document inheritance chain.
func (e Endianness) Or(fallback Endianness) Endianness {
	if e == EndianUnspecified {
		return fallback
	}
	return e
}
