// Package types is the static catalog of primitive types understood by the
// layout compiler. The catalog maps each primitive type name to its natural
// bit width and category. It is built once at process start and never
// mutated, so it is safe to share between concurrent compilations.
package types

import (
	"fmt"

	"github.com/tidwall/btree"
)

// Category is the broad classification of a primitive type. Everything that
// is not a character/text, boolean, floating-point, or padding type is an
// integer; pointer-like types fall into the integer bucket too.
type Category int

const (
	Integer Category = iota
	Float
	Boolean
	String
	Padding
)

func (c Category) String() string {
	switch c {
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Padding:
		return "padding"
	default:
		return "integer"
	}
}

// Info describes one primitive type: its canonical name, natural width in
// bits, and category.
type Info struct {
	Name     string
	Bits     uint32
	Category Category
}

// UnknownTypeError is returned by Lookup for type names that are not in the
// catalog.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

var catalog btree.Map[string, Info]

func init() {
	for _, info := range table {
		catalog.Set(info.Name, info)
	}
}

// Lookup returns the catalog entry for the given primitive type name. It
// returns an *UnknownTypeError if the name is not in the catalog.
func Lookup(name string) (Info, error) {
	info, ok := catalog.Get(name)
	if !ok {
		return Info{}, &UnknownTypeError{Name: name}
	}
	return info, nil
}

// Names returns every type name in the catalog in lexical order.
func Names() []string {
	names := make([]string, 0, catalog.Len())
	catalog.Scan(func(name string, _ Info) bool {
		names = append(names, name)
		return true
	})
	return names
}

// The widths here follow common C conventions: the "long" family is 32 bits
// (ILP32), "bool" is the 16-bit Fortran-style logical while "boolean" and
// "_Bool" are single bytes, and string-ish types describe one character
// element.
var table = []Info{
	{"char", 8, String},
	{"signed char", 8, Integer},
	{"unsigned char", 8, Integer},
	{"short", 16, Integer},
	{"signed short", 16, Integer},
	{"unsigned short", 16, Integer},
	{"short int", 16, Integer},
	{"signed short int", 16, Integer},
	{"unsigned short int", 16, Integer},
	{"int", 32, Integer},
	{"signed int", 32, Integer},
	{"unsigned int", 32, Integer},
	{"long", 32, Integer},
	{"signed long", 32, Integer},
	{"unsigned long", 32, Integer},
	{"long int", 32, Integer},
	{"signed long int", 32, Integer},
	{"unsigned long int", 32, Integer},
	{"long long", 64, Integer},
	{"signed long long", 64, Integer},
	{"unsigned long long", 64, Integer},
	{"long long int", 64, Integer},
	{"signed long long int", 64, Integer},
	{"unsigned long long int", 64, Integer},
	{"float", 32, Float},
	{"double", 64, Float},
	{"long double", 128, Float},
	{"bool", 16, Boolean},
	{"boolean", 8, Boolean},
	{"_Bool", 8, Boolean},
	{"int8_t", 8, Integer},
	{"uint8_t", 8, Integer},
	{"int16_t", 16, Integer},
	{"uint16_t", 16, Integer},
	{"int24_t", 24, Integer},
	{"uint24_t", 24, Integer},
	{"int32_t", 32, Integer},
	{"uint32_t", 32, Integer},
	{"int64_t", 64, Integer},
	{"uint64_t", 64, Integer},
	{"hollerith", 8, String},
	{"string", 8, String},
	{"str", 8, String},
	{"pascal", 8, String},
	{"pointer", 16, Integer},
	{"void", 16, Integer},
	{"padding", 8, Padding},
}
