// Package cgen emits a self-contained C header for compiled layout sets:
// a struct per packet plus static inline unpack and size functions that
// decode from raw bytes with explicit byte-order handling.
package cgen

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/structspec/structspec/backend"
	"github.com/structspec/structspec/internal/text"
	"github.com/structspec/structspec/layout"
	"github.com/structspec/structspec/spec"
	"github.com/structspec/structspec/types"
)

// New returns the C backend.
func New() backend.Backend {
	return cBackend{}
}

type cBackend struct{}

func (cBackend) Name() string          { return "c" }
func (cBackend) FileExtension() string { return "h" }

func (b cBackend) Emit(w io.Writer, set *layout.Set, opts backend.Options) error {
	log := opts.Log()
	log.Debug("emitting c header", zap.String("title", set.Spec.Title),
		zap.Int("packets", len(set.Packets)))

	e := &emitter{w: w, opts: opts}
	guard := guardMacro(set.Spec.Title)
	e.header(set.Spec, guard)
	for _, en := range set.Enums {
		e.enum(en)
	}
	for _, l := range set.Packets {
		e.structDef(l)
	}
	for _, l := range set.Packets {
		e.unpackFunc(l)
		e.sizeFunc(l)
	}
	e.linef("#endif /* %s */", guard)
	return e.err
}

type emitter struct {
	w    io.Writer
	opts backend.Options
	err  error
}

func (e *emitter) line(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s+"\n")
}

func (e *emitter) linef(format string, args ...any) {
	e.line(fmt.Sprintf(format, args...))
}

func (e *emitter) comment(s, indent string) {
	lines := text.Wrap(s, text.DefaultWidth)
	if len(lines) == 1 {
		e.line(indent + "/* " + lines[0] + " */")
		return
	}
	e.line(indent + "/*")
	for _, l := range lines {
		e.line(indent + " * " + l)
	}
	e.line(indent + " */")
}

func guardMacro(title string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(title) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), "_")
	if s == "" {
		s = "STRUCTSPEC"
	}
	return s + "_H"
}

func (e *emitter) header(doc *spec.Specification, guard string) {
	e.line("/*")
	e.line(" * " + doc.Title)
	if doc.Description != "" {
		e.line(" *")
		for _, l := range text.Wrap(doc.Description, text.DefaultWidth) {
			e.line(" * " + l)
		}
	}
	for _, tag := range [][2]string{
		{"Version", doc.Version},
		{"Date", doc.Date},
		{"Author", doc.Author},
		{"Documentation", doc.Documentation},
		{"Metadata", doc.Metadata},
	} {
		if tag[1] != "" {
			e.linef(" * %s: %s", tag[0], tag[1])
		}
	}
	e.line(" */")
	e.linef("#ifndef %s", guard)
	e.linef("#define %s", guard)
	e.line("")
	e.line("#include <stddef.h>")
	e.line("#include <stdint.h>")
	e.line("#include <string.h>")
	e.line("")
	e.loaders()
}

// loaders writes the fixed-width byte-order load helpers the unpack
// functions use. Native-order fields go through memcpy instead.
func (e *emitter) loaders() {
	e.line("static inline uint16_t ss_load16_be(const uint8_t *p) {")
	e.line("    return (uint16_t)((uint16_t)p[0] << 8 | (uint16_t)p[1]);")
	e.line("}")
	e.line("")
	e.line("static inline uint16_t ss_load16_le(const uint8_t *p) {")
	e.line("    return (uint16_t)((uint16_t)p[1] << 8 | (uint16_t)p[0]);")
	e.line("}")
	e.line("")
	e.line("static inline uint32_t ss_load24_be(const uint8_t *p) {")
	e.line("    return (uint32_t)p[0] << 16 | (uint32_t)p[1] << 8 | (uint32_t)p[2];")
	e.line("}")
	e.line("")
	e.line("static inline uint32_t ss_load24_le(const uint8_t *p) {")
	e.line("    return (uint32_t)p[2] << 16 | (uint32_t)p[1] << 8 | (uint32_t)p[0];")
	e.line("}")
	e.line("")
	e.line("static inline uint32_t ss_load32_be(const uint8_t *p) {")
	e.line("    return (uint32_t)p[0] << 24 | (uint32_t)p[1] << 16 |")
	e.line("           (uint32_t)p[2] << 8 | (uint32_t)p[3];")
	e.line("}")
	e.line("")
	e.line("static inline uint32_t ss_load32_le(const uint8_t *p) {")
	e.line("    return (uint32_t)p[3] << 24 | (uint32_t)p[2] << 16 |")
	e.line("           (uint32_t)p[1] << 8 | (uint32_t)p[0];")
	e.line("}")
	e.line("")
	e.line("static inline uint64_t ss_load64_be(const uint8_t *p) {")
	e.line("    return (uint64_t)ss_load32_be(p) << 32 | (uint64_t)ss_load32_be(p + 4);")
	e.line("}")
	e.line("")
	e.line("static inline uint64_t ss_load64_le(const uint8_t *p) {")
	e.line("    return (uint64_t)ss_load32_le(p + 4) << 32 | (uint64_t)ss_load32_le(p);")
	e.line("}")
	e.line("")
}

func (e *emitter) enum(en *layout.Enum) {
	if en.Enum.Title != "" {
		e.comment(en.Enum.Title, "")
	}
	if allIntegers(en) {
		e.linef("typedef enum {")
		for i, opt := range en.Options {
			sep := ","
			if i == len(en.Options)-1 {
				sep = ""
			}
			line := fmt.Sprintf("    %s = %s%s", opt.Name, cLiteral(opt), sep)
			if src := en.Enum.Option(opt.Name); src != nil && src.Title != "" {
				line += "  /* " + src.Title + " */"
			}
			e.line(line)
		}
		e.linef("} %s;", en.Name)
	} else {
		// Mixed or non-integer option values cannot form a C enum.
		for _, opt := range en.Options {
			e.linef("#define %s %s", opt.Name, cLiteral(opt))
		}
	}
	e.line("")
}

func allIntegers(en *layout.Enum) bool {
	for _, opt := range en.Options {
		if opt.Category != types.Integer {
			return false
		}
	}
	return true
}

func cLiteral(opt layout.EnumOption) string {
	v := opt.Value
	switch opt.Category {
	case types.String:
		if v.Kind == spec.ValueString {
			return fmt.Sprintf("%q", v.Str)
		}
		return fmt.Sprintf("%q", v.String())
	case types.Boolean:
		if v.Bool || v.Raw == "true" || v.Raw == "True" {
			return "1"
		}
		return "0"
	default:
		return v.String()
	}
}

// cType maps a primitive type name to the C type used for the decoded
// struct member.
var cType = map[string]string{
	"char": "char", "signed char": "int8_t", "unsigned char": "uint8_t",
	"short": "int16_t", "signed short": "int16_t", "unsigned short": "uint16_t",
	"short int": "int16_t", "signed short int": "int16_t", "unsigned short int": "uint16_t",
	"int": "int32_t", "signed int": "int32_t", "unsigned int": "uint32_t",
	"long": "int32_t", "signed long": "int32_t", "unsigned long": "uint32_t",
	"long int": "int32_t", "signed long int": "int32_t", "unsigned long int": "uint32_t",
	"long long": "int64_t", "signed long long": "int64_t", "unsigned long long": "uint64_t",
	"long long int": "int64_t", "signed long long int": "int64_t",
	"unsigned long long int": "uint64_t",
	"float": "float", "double": "double", "long double": "long double",
	"bool": "int16_t", "boolean": "uint8_t", "_Bool": "uint8_t",
	"int8_t": "int8_t", "uint8_t": "uint8_t", "int16_t": "int16_t", "uint16_t": "uint16_t",
	"int24_t": "int32_t", "uint24_t": "uint32_t", "int32_t": "int32_t", "uint32_t": "uint32_t",
	"int64_t": "int64_t", "uint64_t": "uint64_t",
	"hollerith": "char", "string": "char", "str": "char", "pascal": "char",
	"pointer": "uint16_t", "void": "uint16_t",
}

func slotType(bits uint32) string {
	switch {
	case bits <= 8:
		return "uint8_t"
	case bits <= 16:
		return "uint16_t"
	case bits <= 32:
		return "uint32_t"
	default:
		return "uint64_t"
	}
}

// maxArray bounds the storage reserved in a struct member for arrays and
// strings whose length is only known at unpack time.
const maxArray = 256

func (e *emitter) structDef(l *layout.Layout) {
	if l.Packet.Title != "" {
		e.comment(l.Packet.Title, "")
	}
	e.line("typedef struct {")
	for _, seg := range l.Segments {
		switch s := seg.(type) {
		case *layout.Primitive:
			if s.SizeRef != "" {
				e.linef("    uint8_t %s[%d];  /* %s bits long */", s.Field, maxArray, s.SizeRef)
				continue
			}
			e.linef("    %s %s;", cType[s.Type.Name], s.Field)
		case *layout.BitfieldGroup:
			for _, slot := range s.Slots {
				if slot.Category == types.Padding {
					continue
				}
				e.linef("    %s %s;  /* %d bits */", slotType(slot.Bits), slot.Field, slot.Bits)
			}
		case *layout.Array:
			n := uint64(maxArray)
			if s.HasConstCount() {
				n = s.Count
			}
			if s.Elem.Category == types.Padding {
				continue
			}
			e.linef("    %s %s[%d];", cType[s.Elem.Name], s.Field, n)
		case *layout.Substructure:
			e.linef("    %s %s;", s.Packet, s.Field)
		case *layout.Padding:
			// reserved bytes carry no member
		}
	}
	e.linef("} %s;", l.Name)
	e.line("")
	if bytes, ok := l.Size.ConstantBytes(); ok {
		e.linef("#define %s_LEN %d", strings.ToUpper(l.Name), bytes)
		e.line("")
	}
}

// unpackFunc writes the decoder for one packet. It returns the number of
// bytes consumed, or -1 when buf is too short.
func (e *emitter) unpackFunc(l *layout.Layout) {
	e.linef("static inline long unpack_%s(const uint8_t *buf, size_t len, %s *out) {",
		l.Name, l.Name)
	e.line("    size_t pos = 0;")
	bitUnit := 0
	for _, seg := range l.Segments {
		switch s := seg.(type) {
		case *layout.Primitive:
			if s.SizeRef != "" {
				e.linef("    {")
				e.linef("        size_t width = (size_t)out->%s / 8;", s.SizeRef)
				e.linef("        if (width > sizeof(out->%s) || len - pos < width) return -1;", s.Field)
				e.linef("        memcpy(out->%s, buf + pos, width);", s.Field)
				e.line("        pos += width;")
				e.line("    }")
				continue
			}
			e.need(s.Bits / 8)
			e.scalar(fmt.Sprintf("out->%s", s.Field), cType[s.Type.Name], s.Bits,
				s.Type.Category, s.Endianness)
			e.linef("    pos += %d;", s.Bits/8)
		case *layout.BitfieldGroup:
			e.need(s.StorageBits / 8)
			unit := fmt.Sprintf("unit%d", bitUnit)
			bitUnit++
			e.linef("    {")
			e.linef("        %s %s;", slotType(s.StorageBits), unit)
			e.loadInto("        ", unit, s.StorageBits, s.Endianness)
			for _, slot := range s.Slots {
				if slot.Category == types.Padding {
					continue
				}
				e.linef("        out->%s = (%s)((%s >> %d) & 0x%x);",
					slot.Field, slotType(slot.Bits), unit, slot.Shift, slot.Mask())
			}
			e.line("    }")
			e.linef("    pos += %d;", s.StorageBits/8)
		case *layout.Array:
			count := fmt.Sprintf("%d", s.Count)
			if !s.HasConstCount() {
				count = fmt.Sprintf("(size_t)out->%s", s.CountRef)
			}
			elemBytes := s.ElemBits / 8
			e.linef("    {")
			e.linef("        size_t n = %s;", count)
			e.linef("        if (len - pos < n * %d) return -1;", elemBytes)
			if s.Elem.Category == types.Padding {
				e.linef("        pos += n * %d;", elemBytes)
			} else if !s.HasConstCount() {
				e.linef("        if (n > %d) return -1;", maxArray)
			}
			if s.Elem.Category != types.Padding {
				if elemBytes == 1 || s.Endianness == spec.EndianNative ||
					s.Endianness == spec.EndianUnspecified {
					e.linef("        memcpy(out->%s, buf + pos, n * %d);", s.Field, elemBytes)
				} else {
					e.line("        for (size_t i = 0; i < n; i++) {")
					e.linef("            out->%s[i] = (%s)%s(buf + pos + i * %d);",
						s.Field, cType[s.Elem.Name], loadFn(s.ElemBits, s.Endianness), elemBytes)
					e.line("        }")
				}
				e.linef("        pos += n * %d;", elemBytes)
			}
			e.line("    }")
		case *layout.Substructure:
			e.linef("    {")
			e.linef("        long n = unpack_%s(buf + pos, len - pos, &out->%s);",
				s.Packet, s.Field)
			e.line("        if (n < 0) return -1;")
			e.line("        pos += (size_t)n;")
			e.line("    }")
		case *layout.Padding:
			e.need((s.Bits + 7) / 8)
			e.linef("    pos += %d;", (s.Bits+7)/8)
		}
	}
	e.line("    return (long)pos;")
	e.line("}")
	e.line("")
}

// need writes the length guard for the next n fixed bytes.
func (e *emitter) need(n uint32) {
	e.linef("    if (len - pos < %d) return -1;", n)
}

func loadFn(bits uint32, end spec.Endianness) string {
	suffix := "le"
	if end == spec.EndianBig || end == spec.EndianNetwork {
		suffix = "be"
	}
	return fmt.Sprintf("ss_load%d_%s", bits, suffix)
}

// scalar writes the assignment for one fixed-width field at buf+pos.
func (e *emitter) scalar(dst, ctype string, bits uint32, cat types.Category, end spec.Endianness) {
	if bits == 8 || end == spec.EndianNative || end == spec.EndianUnspecified {
		e.linef("    memcpy(&%s, buf + pos, %d);", dst, bits/8)
		return
	}
	if cat == types.Float {
		// reassemble the bit pattern, then reinterpret
		width := bits
		if width > 64 {
			width = 64
		}
		e.linef("    {")
		e.linef("        %s raw = %s(buf + pos);", slotType(width), loadFn(width, end))
		e.linef("        memcpy(&%s, &raw, sizeof(%s));", dst, dst)
		e.line("    }")
		return
	}
	e.linef("    %s = (%s)%s(buf + pos);", dst, ctype, loadFn(bits, end))
}

func (e *emitter) loadInto(indent, dst string, bits uint32, end spec.Endianness) {
	if bits == 8 {
		e.linef("%s%s = buf[pos];", indent, dst)
		return
	}
	if end == spec.EndianNative || end == spec.EndianUnspecified {
		e.linef("%smemcpy(&%s, buf + pos, %d);", indent, dst, bits/8)
		return
	}
	e.linef("%s%s = %s(buf + pos);", indent, dst, loadFn(bits, end))
}

// sizeFunc writes the size helper. Constant-size packets get a direct
// return; runtime-dependent ones decode into a scratch struct and report
// the consumed length.
func (e *emitter) sizeFunc(l *layout.Layout) {
	e.linef("static inline long %s_size(const uint8_t *buf, size_t len) {", l.Name)
	if bytes, ok := l.Size.ConstantBytes(); ok {
		e.line("    (void)buf;")
		e.line("    (void)len;")
		e.linef("    return %d;", bytes)
	} else {
		e.linef("    %s tmp;", l.Name)
		e.linef("    return unpack_%s(buf, len, &tmp);", l.Name)
	}
	e.line("}")
	e.line("")
}
