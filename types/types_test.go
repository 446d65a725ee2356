package types

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		bits uint32
		cat  Category
	}{
		{"char", 8, String},
		{"signed char", 8, Integer},
		{"unsigned short int", 16, Integer},
		{"int24_t", 24, Integer},
		{"uint32_t", 32, Integer},
		{"long long", 64, Integer},
		{"float", 32, Float},
		{"double", 64, Float},
		{"long double", 128, Float},
		{"bool", 16, Boolean},
		{"_Bool", 8, Boolean},
		{"string", 8, String},
		{"pascal", 8, String},
		{"pointer", 16, Integer},
		{"padding", 8, Padding},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			info, err := Lookup(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.name, info.Name)
			assert.Equal(t, tc.bits, info.Bits)
			assert.Equal(t, tc.cat, info.Category)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()
	_, err := Lookup("quadword")
	require.Error(t, err)
	var unknownErr *UnknownTypeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "quadword", unknownErr.Name)
	assert.Contains(t, err.Error(), "quadword")
}

func TestNames(t *testing.T) {
	t.Parallel()
	names := Names()
	assert.True(t, sort.StringsAreSorted(names), "catalog names must iterate in order")
	assert.Contains(t, names, "uint8_t")
	assert.Contains(t, names, "padding")
	// every listed name must resolve
	for _, n := range names {
		_, err := Lookup(n)
		assert.NoError(t, err, n)
	}
}
