// Package pygen emits Python unpack code for compiled layout sets, using
// the standard struct module. It is one of the two reference backends.
package pygen

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

// New returns the Python backend.
func New() backend.Backend {
	return pyBackend{}
}

type pyBackend struct{}

func (pyBackend) Name() string          { return "python" }
func (pyBackend) FileExtension() string { return "py" }

// formatChar maps primitive type names to struct module format characters.
type formatCharMap map[string]string

var formatChar = formatCharMap{
	"char": "c", "signed char": "b", "unsigned char": "B",
	"short": "h", "signed short": "h", "unsigned short": "H",
	"short int": "h", "signed short int": "h", "unsigned short int": "H",
	"int": "i", "signed int": "i", "unsigned int": "I",
	"long": "l", "signed long": "l", "unsigned long": "L",
	"long int": "l", "signed long int": "l", "unsigned long int": "L",
	"long long": "q", "signed long long": "q", "unsigned long long": "Q",
	"long long int": "q", "signed long long int": "q", "unsigned long long int": "Q",
	"float": "f", "double": "d", "long double": "QQ",
	"bool": "i", "boolean": "?", "_Bool": "?",
	"int8_t": "b", "uint8_t": "B", "int16_t": "h", "uint16_t": "H",
	"int24_t": "BH", "uint24_t": "BH", "int32_t": "l", "uint32_t": "L",
	"int64_t": "q", "uint64_t": "Q",
	"hollerith": "c", "string": "s", "str": "s", "pascal": "p",
	"pointer": "P", "void": "P", "padding": "x",
}

var endianChar = map[spec.Endianness]string{
	spec.EndianBig:     ">",
	spec.EndianLittle:  "<",
	spec.EndianNetwork: "!",
	spec.EndianNative:  "@",
}

var storageChar = map[uint32]string{8: "B", 16: "H", 32: "L", 64: "Q"}

func (b pyBackend) Emit(w io.Writer, set *layout.Set, opts backend.Options) error {
	log := opts.Log()
	log.Debug("emitting python", zap.String("title", set.Spec.Title),
		zap.Int("packets", len(set.Packets)))

	e := &emitter{w: w, opts: opts}
	e.header(set.Spec)
	for _, en := range set.Enums {
		e.enum(en)
	}
	for _, l := range set.Packets {
		log.Debug("emitting packet", zap.String("packet", l.Name))
		e.packet(l)
	}
	e.line(`if __name__ == "__main__":`)
	e.line(`    import doctest`)
	e.line(`    doctest.testmod()`)
	return e.err
}

type emitter struct {
	w    io.Writer
	opts backend.Options
	err  error

	bitFieldCount int
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

func (e *emitter) block(s, prefix string) {
	for _, l := range text.Prefix(s, prefix, text.DefaultWidth) {
		e.line(l)
	}
}

func (e *emitter) header(doc *spec.Specification) {
	e.line("#!/usr/bin/env python")
	e.line("# -*- coding: utf-8 -*-")
	e.line(`"""`)
	e.line(doc.Title)
	if doc.Description != "" {
		e.line("")
		e.block(doc.Description, "")
	}
	for _, tag := range [][2]string{
		{"Version", doc.Version},
		{"Date", doc.Date},
		{"Author", doc.Author},
		{"Documentation", doc.Documentation},
		{"Metadata", doc.Metadata},
	} {
		if tag[1] != "" {
			e.line("")
			e.linef("%s: %s", tag[0], tag[1])
		}
	}
	e.line(`"""`)
	e.line("")
	e.line("from struct import unpack_from, calcsize")
	e.line("")
}

func (e *emitter) enum(en *layout.Enum) {
	e.line("##")
	if en.Enum.Title != "" {
		e.line("# " + en.Enum.Title)
	} else {
		e.line("# " + en.Name)
	}
	if en.Enum.Description != "" {
		e.line("#")
		e.block(en.Enum.Description, "# ")
	}
	e.line("#")
	for _, opt := range en.Options {
		line := opt.Name + " = " + pyLiteral(opt)
		if src := en.Enum.Option(opt.Name); src != nil && src.Title != "" {
			line += "  # " + src.Title
		}
		e.line(line)
	}
	e.line("")
	e.line("")
}

// pyLiteral renders a resolved option value as a Python literal. Integer
// options whose literal is not itself numeric (the parenthesized cast
// notation) are emitted verbatim.
func pyLiteral(opt layout.EnumOption) string {
	v := opt.Value
	switch opt.Category {
	case types.String:
		if v.Kind == spec.ValueString {
			return fmt.Sprintf("%q", v.Str)
		}
		return fmt.Sprintf("%q", v.String())
	case types.Boolean:
		if v.Bool || v.Raw == "true" || v.Raw == "True" {
			return "True"
		}
		return "False"
	default:
		return v.String()
	}
}

// run accumulates consecutive struct-format items between boundaries that
// cannot be expressed in one format string (substructures, runtime-sized
// fields, endianness changes).
type run struct {
	pieces  []string
	targets []string
	args    []string
	end     spec.Endianness
	active  bool
}

func (e *emitter) packet(l *layout.Layout) {
	e.linef("def unpack_%s(rawData):", l.Name)
	e.docstring(l)
	e.line("    packet = {}")
	e.line("    position = 0")
	if e.opts.IncludeIdentifier {
		e.linef("    packet['_packet'] = %q", l.Name)
	}
	e.bitFieldCount = 0
	var (
		r          run
		extractors []string
	)
	flush := func() {
		e.flushRun(&r)
		for _, x := range extractors {
			e.line("    " + x)
		}
		extractors = nil
	}
	for _, seg := range l.Segments {
		switch s := seg.(type) {
		case *layout.Primitive:
			if s.SizeRef != "" {
				flush()
				e.linef("    width = packet['%s'] // 8", s.SizeRef)
				e.linef("    packet['%s'] = rawData[position:position + width]", s.Field)
				e.line("    position += width")
				continue
			}
			e.startRun(&r, s.Endianness, flush)
			r.pieces = append(r.pieces, formatChar[s.Type.Name])
			r.targets = append(r.targets, fmt.Sprintf("packet['%s']", s.Field))
		case *layout.BitfieldGroup:
			e.startRun(&r, s.Endianness, flush)
			unit := fmt.Sprintf("bitField%d", e.bitFieldCount)
			e.bitFieldCount++
			r.pieces = append(r.pieces, storageChar[s.StorageBits])
			r.targets = append(r.targets, unit)
			for _, slot := range s.Slots {
				if slot.Category == types.Padding {
					continue
				}
				extractors = append(extractors, fmt.Sprintf(
					"packet['%s'] = %s((%s >> %d) & 0x%x)",
					slot.Field, pyCast(slot.Category), unit, slot.Shift, slot.Mask()))
			}
		case *layout.Array:
			if !s.HasConstCount() {
				// the count field must be unpacked before its value can
				// size this segment's format string
				flush()
			}
			e.startRun(&r, s.Endianness, flush)
			ch := formatChar[s.Elem.Name]
			if s.HasConstCount() {
				r.pieces = append(r.pieces, fmt.Sprintf("%d%s", s.Count, ch))
			} else {
				r.pieces = append(r.pieces, "{}"+ch)
				r.args = append(r.args, fmt.Sprintf("packet['%s']", s.CountRef))
			}
			if s.Elem.Category != types.Padding {
				r.targets = append(r.targets, fmt.Sprintf("packet['%s']", s.Field))
			}
		case *layout.Substructure:
			flush()
			e.linef("    packet['%s'] = unpack_%s(rawData[position:])", s.Field, s.Packet)
			if bits, ok := s.Size.Constant(); ok {
				e.linef("    position += %d", (bits+7)/8)
			} else {
				e.linef("    position += %s_len(rawData[position:])", s.Packet)
			}
		case *layout.Padding:
			e.startRun(&r, l.Endianness, flush)
			r.pieces = append(r.pieces, fmt.Sprintf("%dx", (s.Bits+7)/8))
		}
	}
	flush()
	if l.Size.RuntimeDependent() {
		e.line("    packet['_size'] = position")
	}
	e.line("    return packet")
	e.line("")
	e.line("")
	e.lenFunc(l)
	e.validateFunc(l)
}

// startRun flushes the pending run when the new segment's endianness does
// not match it, then marks the run active.
func (e *emitter) startRun(r *run, end spec.Endianness, flush func()) {
	if r.active && r.end != end {
		flush()
	}
	if !r.active {
		r.end = end
	}
	r.active = true
}

// flushRun writes the pending format run as one unpack_from call.
func (e *emitter) flushRun(r *run) {
	if !r.active || len(r.pieces) == 0 {
		*r = run{}
		return
	}
	fmtStr := endianChar[r.end] + strings.Join(r.pieces, "")
	if len(r.args) > 0 {
		e.linef("    segmentFmt = \"%s\".format(%s)", fmtStr, strings.Join(r.args, ", "))
	} else {
		e.linef("    segmentFmt = \"%s\"", fmtStr)
	}
	e.line("    segmentLen = calcsize(segmentFmt)")
	switch len(r.targets) {
	case 0:
	case 1:
		e.linef("    [%s] = unpack_from(segmentFmt, rawData, position)", r.targets[0])
	default:
		e.linef("    (%s) = unpack_from(segmentFmt, rawData, position)", strings.Join(r.targets, ", "))
	}
	e.line("    position += segmentLen")
	*r = run{}
}

func pyCast(c types.Category) string {
	switch c {
	case types.Float:
		return "float"
	case types.Boolean:
		return "bool"
	case types.String:
		return "str"
	default:
		return "int"
	}
}

func (e *emitter) docstring(l *layout.Layout) {
	e.line(`    """`)
	if l.Packet.Title != "" {
		e.line("    " + l.Packet.Title)
	} else {
		e.line("    " + l.Name)
	}
	if l.Packet.Description != "" {
		e.line("")
		e.block(l.Packet.Description, "    ")
	}
	e.line("")
	e.line("    Args:")
	e.line("        rawData (bytes): The raw binary data to be unpacked.")
	e.line("")
	e.line("    Returns:")
	e.line("        A dictionary of the unpacked data.")
	e.line(`    """`)
}

func (e *emitter) lenFunc(l *layout.Layout) {
	if bits, ok := l.Size.Constant(); ok {
		bytes := (bits + 7) / 8
		e.linef("def %s_len(rawData=None):", l.Name)
		e.line(`    """`)
		e.linef("    Calculates the size of %s.", l.Name)
		e.line("")
		e.line("    Examples:")
		e.linef("        >>> %s_len()", l.Name)
		e.linef("        %d", bytes)
		e.line(`    """`)
		e.linef("    return %d", bytes)
	} else {
		e.linef("def %s_len(rawData=None):", l.Name)
		e.line(`    """`)
		e.linef("    Calculates the size of %s.", l.Name)
		e.line("")
		e.linef("    The size of %s depends on runtime values (%s bits),", l.Name, l.Size)
		e.line("    so the raw packet bytes are required to compute it.")
		e.line(`    """`)
		e.line("    if rawData is None:")
		e.linef("        raise ValueError(\"%s has a runtime-dependent size\")", l.Name)
		e.linef("    return unpack_%s(rawData)['_size']", l.Name)
	}
	e.line("")
	e.line("")
}

func (e *emitter) validateFunc(l *layout.Layout) {
	e.linef("def validate_%s(rawData):", l.Name)
	e.line(`    """`)
	e.linef("    Reads and validates a %s packet.", l.Name)
	e.line(`    """`)
	if bits, ok := l.Size.Constant(); ok {
		e.linef("    if len(rawData) < %d:", (bits+7)/8)
		e.linef("        raise ValueError(\"short %s packet\")", l.Name)
	}
	e.linef("    return unpack_%s(rawData)", l.Name)
	e.line("")
	e.line("")
}
