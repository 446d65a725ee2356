package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Parallel()
	lines := Wrap("the quick brown fox jumps over the lazy dog", 15)
	assert.Equal(t, []string{
		"the quick brown",
		"fox jumps over",
		"the lazy dog",
	}, lines)
}

func TestWrapShort(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"short"}, Wrap("short", 40))
}

func TestWrapEmpty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Wrap("", 40))
	assert.Nil(t, Wrap("   \n\t ", 40))
}

func TestWrapLongWord(t *testing.T) {
	t.Parallel()
	// a word wider than the limit gets its own line, unbroken
	lines := Wrap("see documentation/specifications/packet-formats.html for details", 20)
	assert.Contains(t, lines, "documentation/specifications/packet-formats.html")
}

func TestWrapCollapsesWhitespace(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a b c"}, Wrap("a\n  b\t c", 40))
}

func TestWrapDefaultWidth(t *testing.T) {
	t.Parallel()
	// a non-positive width falls back to DefaultWidth
	assert.Equal(t, Wrap("one two three", DefaultWidth), Wrap("one two three", 0))
}

func TestPrefix(t *testing.T) {
	t.Parallel()
	lines := Prefix("alpha beta gamma", "# ", 11)
	assert.Equal(t, []string{"# alpha beta", "# gamma"}, lines)
}
