package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structspec/structspec/layout"
	"github.com/structspec/structspec/reporter"
	"github.com/structspec/structspec/spec"
	"github.com/structspec/structspec/types"
)

func TestEnumAutoIncrement(t *testing.T) {
	t.Parallel()
	set, _, err := compileSource(t, `
title: test
enums:
  colors:
    options:
      red:
      green:
        value: 5
      blue:
`)
	require.NoError(t, err)
	en := set.Enum("colors")
	require.NotNil(t, en)
	require.Len(t, en.Options, 3)

	// the first value of an enumeration defaults to 0; an implicit value
	// after an explicit one is the predecessor plus one
	assert.Equal(t, int64(0), en.Options[0].Value.Int)
	assert.Equal(t, int64(5), en.Options[1].Value.Int)
	assert.Equal(t, int64(6), en.Options[2].Value.Int)
	for _, opt := range en.Options {
		assert.Equal(t, types.Integer, opt.Category)
		assert.True(t, opt.Value.IsInteger())
	}

	blue := en.Option("blue")
	require.NotNil(t, blue)
	assert.Equal(t, int64(6), blue.Value.Int)
}

func TestEnumLiteralClassification(t *testing.T) {
	t.Parallel()
	set, _, err := compileSource(t, `
title: test
enums:
  mixed:
    options:
      count:
        value: 17
      ratio:
        value: 2.5
      enabled:
        value: true
      label:
        value: active
`)
	require.NoError(t, err)
	en := set.Enum("mixed")
	require.NotNil(t, en)

	assert.Equal(t, types.Integer, en.Option("count").Category)
	assert.Equal(t, types.Float, en.Option("ratio").Category)
	assert.Equal(t, 2.5, en.Option("ratio").Value.Float)
	assert.Equal(t, types.Boolean, en.Option("enabled").Category)
	assert.True(t, en.Option("enabled").Value.Bool)
	assert.Equal(t, types.String, en.Option("label").Category)
	assert.Equal(t, "active", en.Option("label").Value.Str)
}

func TestEnumDeclaredType(t *testing.T) {
	t.Parallel()
	set, _, err := compileSource(t, `
title: test
enums:
  sized:
    type: uint8_t
    options:
      a:
        value: 1
      b:
        type: float
        value: 2
`)
	require.NoError(t, err)
	en := set.Enum("sized")
	require.NotNil(t, en)

	// the enumeration's declared type classifies options unless an option
	// carries its own type override
	assert.Equal(t, types.Integer, en.Option("a").Category)
	assert.Equal(t, types.Float, en.Option("b").Category)
}

func TestEnumParenthesizedIntegerQuirk(t *testing.T) {
	t.Parallel()
	set, _, err := compileSource(t, `
title: test
enums:
  casts:
    options:
      shifted:
        value: (1 << 4)
`)
	require.NoError(t, err)
	en := set.Enum("casts")
	require.NotNil(t, en)

	opt := en.Option("shifted")
	require.NotNil(t, opt)
	assert.Equal(t, types.Integer, opt.Category)
	assert.Equal(t, spec.ValueString, opt.Value.Kind)
	assert.Equal(t, "(1 << 4)", opt.Value.Raw)
}

func TestEnumInvalidSequence(t *testing.T) {
	t.Parallel()
	set, coll, err := compileSource(t, `
title: test
enums:
  broken:
    options:
      ratio:
        value: 2.5
      next:
  fine:
    options:
      only:
        value: 1
`)
	require.ErrorIs(t, err, reporter.ErrInvalidSpec)
	// an implicit increment over a non-integer predecessor fails the
	// enumeration; the rest of the document still compiles
	assert.Nil(t, set.Enum("broken"))
	assert.NotNil(t, set.Enum("fine"))
	assert.Contains(t, kinds(coll), layout.ErrInvalidEnumerationSequence)
}

func TestEnumUnknownDeclaredType(t *testing.T) {
	t.Parallel()
	set, coll, err := compileSource(t, `
title: test
enums:
  bad:
    type: quadword
    options:
      a:
        value: 1
`)
	require.ErrorIs(t, err, reporter.ErrInvalidSpec)
	assert.Nil(t, set.Enum("bad"))
	assert.Contains(t, kinds(coll), layout.ErrUnknownType)
}
