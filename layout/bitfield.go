package layout

import (
	"golang.org/x/exp/constraints"

	"github.com/structspec/structspec/spec"
)

// storageWidths are the aligned unit sizes a bitfield run may be packed
// into, smallest first.
var storageWidths = [...]uint32{8, 16, 32, 64}

// fitStorage returns the smallest storage width that can hold bits. ok is
// false when bits exceeds the largest unit.
func fitStorage[T constraints.Integer](bits T) (T, bool) {
	for _, w := range storageWidths {
		if bits <= T(w) {
			return T(w), true
		}
	}
	return 0, false
}

// bitfieldRun accumulates consecutive sub-byte-aligned fields until a
// non-bitfield boundary forces a flush. It is a value type: append and
// flush return new accumulators instead of mutating shared state, keeping
// the grouping logic testable in isolation. The run adopts the resolved
// endianness of its first field.
type bitfieldRun struct {
	bits  uint32
	end   spec.Endianness
	slots []BitfieldSlot
}

// append adds a field to the run. Each slot occupies the next width bits of
// the eventual storage unit, starting at bit 0 in declaration order. If the
// addition exactly fills a storage unit the run flushes immediately, which
// is what keeps widths [3, 5, 9] in an 8-bit unit plus a 16-bit unit
// rather than one 32-bit unit.
func (r bitfieldRun) append(slot BitfieldSlot, end spec.Endianness) (bitfieldRun, *BitfieldGroup) {
	if len(r.slots) == 0 {
		r.end = end
	}
	slot.Shift = r.bits
	slots := make([]BitfieldSlot, len(r.slots), len(r.slots)+1)
	copy(slots, r.slots)
	r.slots = append(slots, slot)
	r.bits += slot.Bits
	for _, w := range storageWidths {
		if r.bits == w {
			// An exactly filled unit can never overflow.
			next, group, _ := r.flush()
			return next, group
		}
	}
	return r, nil
}

// flush emits the pending run as a group packed into the smallest storage
// unit that holds it, and resets the accumulator. A pending total beyond 64
// bits cannot be stored and is a BitfieldOverflow.
func (r bitfieldRun) flush() (bitfieldRun, *BitfieldGroup, *Error) {
	if len(r.slots) == 0 {
		return bitfieldRun{}, nil, nil
	}
	storage, ok := fitStorage(r.bits)
	if !ok {
		return bitfieldRun{}, nil, errorf(ErrBitfieldOverflow, spec.SourcePos{}, "", r.slots[0].Field,
			"bitfield run of %d bits exceeds the largest storage unit (64 bits)", r.bits)
	}
	return bitfieldRun{}, &BitfieldGroup{
		Slots:       r.slots,
		StorageBits: storage,
		Endianness:  r.end,
	}, nil
}
