package layout

import (
	"math"
	"strings"

	"github.com/structspec/structspec/internal/toposort"
	"github.com/structspec/structspec/reporter"
	"github.com/structspec/structspec/spec"
	"github.com/structspec/structspec/types"
)

// Compile compiles every packet in the document. The returned Set contains
// the layouts of all packets that compiled successfully, in declaration
// order. If any errors were reported, the error return is non-nil (the
// handler's aggregate error); the Set is still returned so callers can
// inspect what did compile, but no failed packet ever appears in it.
func Compile(doc *spec.Specification, handler *reporter.Handler) (*Set, error) {
	if handler == nil {
		handler = reporter.NewHandler(nil)
	}
	c := &compiler{
		doc:    doc,
		set:    &Set{Spec: doc},
		failed: map[string]bool{},
	}
	if err := c.checkNames(handler); err != nil {
		return nil, err
	}
	if err := c.compileEnums(handler); err != nil {
		return nil, err
	}

	order, cycles := toposort.Sort(doc.Packets,
		func(p *spec.Packet) string { return p.Name },
		c.substructures,
	)
	for _, cycle := range cycles {
		names := make([]string, len(cycle))
		for i, p := range cycle {
			names[i] = p.Name
		}
		chain := strings.Join(names, " -> ") + " -> " + names[0]
		for _, p := range cycle {
			c.failed[p.Name] = true
			err := c.report(handler, errorf(ErrCyclicSubstructure, p.Pos, p.Name, "",
				"packet participates in substructure cycle %s", chain))
			if err != nil {
				return nil, err
			}
		}
	}

	for _, p := range order {
		if c.failed[p.Name] {
			continue
		}
		if err := c.compilePacket(p, handler); err != nil {
			return nil, err
		}
	}
	if c.errored {
		// The handler may be shared across documents, so report this
		// document's failure from local state rather than handler.Error().
		return c.set, reporter.ErrInvalidSpec
	}
	return c.set, nil
}

type compiler struct {
	doc     *spec.Specification
	set     *Set
	failed  map[string]bool
	errored bool
}

// report funnels a compile error through the handler while remembering that
// this document failed.
func (c *compiler) report(h *reporter.Handler, e *Error) error {
	c.errored = true
	return h.HandleError(e)
}

// substructures returns the packets that p directly depends on. Fields
// whose type names a packet that does not exist are left for compilePacket
// to report.
func (c *compiler) substructures(p *spec.Packet) []*spec.Packet {
	var deps []*spec.Packet
	for _, f := range p.Fields {
		name, ok := f.PacketRef()
		if !ok {
			continue
		}
		if dep := c.doc.Packet(name); dep != nil {
			deps = append(deps, dep)
		}
	}
	return deps
}

// checkNames enforces uniqueness of packet names in the document and of
// field names within each packet. A name collision fails the affected
// packet but leaves the rest of the document compiling.
func (c *compiler) checkNames(h *reporter.Handler) error {
	seen := make(map[string]spec.SourcePos, len(c.doc.Packets))
	for _, p := range c.doc.Packets {
		if prev, ok := seen[p.Name]; ok {
			c.failed[p.Name] = true
			err := c.report(h, errorf(ErrDuplicatePacketName, p.Pos, p.Name, "",
				"packet %q already declared at %s", p.Name, prev))
			if err != nil {
				return err
			}
			continue
		}
		seen[p.Name] = p.Pos

		fields := make(map[string]spec.SourcePos, len(p.Fields))
		for _, f := range p.Fields {
			if prev, ok := fields[f.Name]; ok {
				c.failed[p.Name] = true
				err := c.report(h, errorf(ErrDuplicateFieldName, f.Pos, p.Name, f.Name,
					"field %q already declared at %s", f.Name, prev))
				if err != nil {
					return err
				}
				continue
			}
			fields[f.Name] = f.Pos
		}
	}
	return nil
}

// compilePacket walks the packet's fields in declaration order and builds
// its layout and size expression. Errors are reported through the handler
// and the walk keeps going, so one packet surfaces all of its problems at
// once; any error leaves the packet out of the set.
func (c *compiler) compilePacket(p *spec.Packet, h *reporter.Handler) error {
	pktEnd := p.Endianness.Or(c.doc.Endianness)
	l := &Layout{Packet: p, Name: p.Name, Endianness: pktEnd}
	run := bitfieldRun{}
	ok := true

	report := func(e *Error) error {
		ok = false
		if e.Packet == "" {
			e.Packet = p.Name
		}
		if e.Pos == (spec.SourcePos{}) {
			e.Pos = p.Pos
		}
		return c.report(h, e)
	}
	flush := func() error {
		next, group, ferr := run.flush()
		run = next
		if ferr != nil {
			return report(ferr)
		}
		if group != nil {
			l.Segments = append(l.Segments, group)
			l.Size = l.Size.plusConst(uint64(group.StorageBits))
		}
		return nil
	}

	for _, f := range p.Fields {
		fieldEnd := f.Endianness.Or(pktEnd)

		if sub, isSub := f.PacketRef(); isSub {
			if err := flush(); err != nil {
				return err
			}
			subLayout := c.set.Packet(sub)
			if subLayout == nil {
				var e *Error
				if c.doc.Packet(sub) == nil {
					e = errorf(ErrUnknownType, f.Pos, p.Name, f.Name,
						"field type %q does not name a known packet", f.Type)
				} else {
					e = errorf(ErrUnresolvableReference, f.Pos, p.Name, f.Name,
						"size of substructure %q is unavailable because it failed to compile", sub)
				}
				if err := report(e); err != nil {
					return err
				}
				continue
			}
			l.Segments = append(l.Segments, &Substructure{Field: f.Name, Packet: sub, Size: subLayout.Size})
			if subLayout.Size.RuntimeDependent() {
				l.Size = l.Size.plusTerm(Term{Kind: TermPacketSize, Name: sub, ScaleBits: 1})
			} else {
				l.Size = l.Size.plus(subLayout.Size)
			}
			continue
		}

		info, terr := types.Lookup(f.Type)
		if terr != nil {
			if err := report(errorf(ErrUnknownType, f.Pos, p.Name, f.Name, "%v", terr)); err != nil {
				return err
			}
			continue
		}

		var (
			sizeBits  uint32
			sizeRef   string
			sizeConst bool
		)
		if f.Size != nil {
			if f.Size.IsRef() {
				ref, rerr := c.resolveReference(f.Size.Ref, f.Size.Pos, p.Name, f.Name)
				if rerr != nil {
					if err := report(rerr); err != nil {
						return err
					}
					continue
				}
				if ref.Const != nil {
					if !ref.Const.IsInteger() {
						e := errorf(ErrUnresolvableReference, f.Size.Pos, p.Name, f.Name,
							"size reference %q resolves to non-integer value %q", f.Size.Ref, ref.Const.String())
						if err := report(e); err != nil {
							return err
						}
						continue
					}
					if ref.Const.Int < 0 || ref.Const.Int > math.MaxUint32 {
						e := errorf(ErrUnresolvableReference, f.Size.Pos, p.Name, f.Name,
							"size reference %q resolves to %d, which is not a usable bit width", f.Size.Ref, ref.Const.Int)
						if err := report(e); err != nil {
							return err
						}
						continue
					}
					sizeBits, sizeConst = uint32(ref.Const.Int), true
				} else {
					sizeRef = ref.Field
				}
			} else {
				sizeBits, sizeConst = uint32(f.Size.Lit), true
			}
		}

		if f.Count != nil {
			if err := flush(); err != nil {
				return err
			}
			if sizeRef != "" {
				e := errorf(ErrUnresolvableReference, f.Size.Pos, p.Name, f.Name,
					"array element width cannot depend on runtime field %q", sizeRef)
				if err := report(e); err != nil {
					return err
				}
				continue
			}
			// element widths must stay byte-aligned; a sub-byte size
			// override on a counted field falls back to the natural width
			elemBits := info.Bits
			if sizeConst && sizeBits%8 == 0 {
				elemBits = sizeBits
			}
			arr := &Array{Field: f.Name, Elem: info, ElemBits: elemBits, Endianness: fieldEnd}
			if f.Count.IsRef() {
				ref, rerr := c.resolveReference(f.Count.Ref, f.Count.Pos, p.Name, f.Name)
				if rerr != nil {
					if err := report(rerr); err != nil {
						return err
					}
					continue
				}
				if ref.Const != nil {
					if !ref.Const.IsInteger() {
						e := errorf(ErrUnresolvableReference, f.Count.Pos, p.Name, f.Name,
							"count reference %q resolves to non-integer value %q", f.Count.Ref, ref.Const.String())
						if err := report(e); err != nil {
							return err
						}
						continue
					}
					if ref.Const.Int < 0 {
						e := errorf(ErrUnresolvableReference, f.Count.Pos, p.Name, f.Name,
							"count reference %q resolves to negative value %d", f.Count.Ref, ref.Const.Int)
						if err := report(e); err != nil {
							return err
						}
						continue
					}
					arr.Count = uint64(ref.Const.Int)
				} else {
					arr.CountRef = ref.Field
				}
			} else {
				arr.Count = uint64(f.Count.Lit)
			}
			if arr.HasConstCount() {
				l.Size = l.Size.plusConst(arr.Count * uint64(elemBits))
			} else {
				l.Size = l.Size.plusTerm(Term{Kind: TermFieldCount, Name: arr.CountRef, ScaleBits: uint64(elemBits)})
			}
			l.Segments = append(l.Segments, arr)
			continue
		}

		if sizeRef != "" {
			// Width known only at unpack time. The field stays byte-aligned
			// and the packet's size picks up a runtime term.
			if err := flush(); err != nil {
				return err
			}
			l.Segments = append(l.Segments, &Primitive{Field: f.Name, Type: info, SizeRef: sizeRef, Endianness: fieldEnd})
			l.Size = l.Size.plusTerm(Term{Kind: TermFieldSize, Name: sizeRef, ScaleBits: 1})
			continue
		}

		if sizeConst && (sizeBits != info.Bits || sizeBits%8 != 0) {
			var group *BitfieldGroup
			run, group = run.append(BitfieldSlot{Field: f.Name, Bits: sizeBits, Category: info.Category}, fieldEnd)
			if group != nil {
				l.Segments = append(l.Segments, group)
				l.Size = l.Size.plusConst(uint64(group.StorageBits))
			}
			continue
		}

		if err := flush(); err != nil {
			return err
		}
		bits := info.Bits
		if sizeConst {
			bits = sizeBits
		}
		if info.Category == types.Padding {
			l.Segments = append(l.Segments, &Padding{Bits: bits})
		} else {
			l.Segments = append(l.Segments, &Primitive{Field: f.Name, Type: info, Bits: bits, Endianness: fieldEnd})
		}
		l.Size = l.Size.plusConst(uint64(bits))
	}

	if err := flush(); err != nil {
		return err
	}
	if !ok {
		c.failed[p.Name] = true
		return nil
	}
	c.set.addPacket(l)
	return nil
}
