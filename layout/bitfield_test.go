package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structspec/structspec/spec"
	"github.com/structspec/structspec/types"
)

func TestFitStorage(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		bits uint32
		want uint32
		ok   bool
	}{
		{1, 8, true},
		{8, 8, true},
		{9, 16, true},
		{16, 16, true},
		{17, 32, true},
		{33, 64, true},
		{64, 64, true},
		{65, 0, false},
	}
	for _, tc := range testCases {
		got, ok := fitStorage(tc.bits)
		assert.Equal(t, tc.ok, ok, "bits=%d", tc.bits)
		assert.Equal(t, tc.want, got, "bits=%d", tc.bits)
	}
}

func slot(name string, bits uint32) BitfieldSlot {
	return BitfieldSlot{Field: name, Bits: bits, Category: types.Integer}
}

func TestBitfieldRunExactFill(t *testing.T) {
	t.Parallel()
	var r bitfieldRun

	r, group := r.append(slot("a", 3), spec.EndianBig)
	assert.Nil(t, group)
	r, group = r.append(slot("b", 5), spec.EndianBig)
	// 3+5 exactly fills one byte, so the run flushes without waiting for
	// a boundary
	require.NotNil(t, group)
	assert.Equal(t, uint32(8), group.StorageBits)
	require.Len(t, group.Slots, 2)
	assert.Equal(t, uint32(0), group.Slots[0].Shift)
	assert.Equal(t, uint32(3), group.Slots[1].Shift)

	r, group = r.append(slot("c", 9), spec.EndianBig)
	assert.Nil(t, group)
	_, group, err := r.flush()
	require.Nil(t, err)
	require.NotNil(t, group)
	assert.Equal(t, uint32(16), group.StorageBits)
	assert.Equal(t, uint32(0), group.Slots[0].Shift)
}

func TestBitfieldRunSmallestStorage(t *testing.T) {
	t.Parallel()
	var r bitfieldRun
	r, group := r.append(slot("a", 3), spec.EndianLittle)
	require.Nil(t, group)
	r, group = r.append(slot("b", 6), spec.EndianLittle)
	require.Nil(t, group)

	// 9 pending bits pack into the smallest unit that holds them
	_, group, err := r.flush()
	require.Nil(t, err)
	require.NotNil(t, group)
	assert.Equal(t, uint32(16), group.StorageBits)
	assert.Equal(t, spec.EndianLittle, group.Endianness)
}

func TestBitfieldRunOverflow(t *testing.T) {
	t.Parallel()
	var r bitfieldRun
	r, group := r.append(slot("lo", 33), spec.EndianBig)
	require.Nil(t, group)
	r, group = r.append(slot("hi", 33), spec.EndianBig)
	require.Nil(t, group)

	_, group, err := r.flush()
	assert.Nil(t, group)
	require.NotNil(t, err)
	assert.Equal(t, ErrBitfieldOverflow, err.Kind)
}

func TestBitfieldRunEndiannessFromFirstSlot(t *testing.T) {
	t.Parallel()
	var r bitfieldRun
	r, _ = r.append(slot("a", 2), spec.EndianBig)
	r, _ = r.append(slot("b", 2), spec.EndianLittle)
	_, group, err := r.flush()
	require.Nil(t, err)
	require.NotNil(t, group)
	assert.Equal(t, spec.EndianBig, group.Endianness)
}

func TestBitfieldRunEmptyFlush(t *testing.T) {
	t.Parallel()
	var r bitfieldRun
	_, group, err := r.flush()
	assert.Nil(t, group)
	assert.Nil(t, err)
}

func TestBitfieldSlotMask(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint64(0x1), BitfieldSlot{Bits: 1}.Mask())
	assert.Equal(t, uint64(0x7), BitfieldSlot{Bits: 3}.Mask())
	assert.Equal(t, uint64(0xffff), BitfieldSlot{Bits: 16}.Mask())
	assert.Equal(t, ^uint64(0), BitfieldSlot{Bits: 64}.Mask())
}

func TestBitfieldRunValueSemantics(t *testing.T) {
	t.Parallel()
	var r bitfieldRun
	r1, _ := r.append(slot("a", 3), spec.EndianBig)
	// appending to a copy must not disturb the original accumulator
	r2, _ := r1.append(slot("b", 2), spec.EndianBig)
	r3, _ := r1.append(slot("c", 4), spec.EndianBig)

	_, g2, err := r2.flush()
	require.Nil(t, err)
	_, g3, err := r3.flush()
	require.Nil(t, err)
	assert.Equal(t, "b", g2.Slots[1].Field)
	assert.Equal(t, "c", g3.Slots[1].Field)
}
