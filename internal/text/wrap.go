// Package text provides display-width-aware text wrapping for the comment
// blocks that backends emit into generated artifacts. Widths are measured
// per grapheme cluster rather than per byte so that documents with wide or
// combining characters in their descriptions wrap sensibly.
package text

import (
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultWidth is the wrapping width used for emitted comment blocks.
const DefaultWidth = 72

// Wrap breaks s into lines of at most width display columns, splitting on
// whitespace. Words wider than the limit are placed on lines of their own
// rather than broken apart.
func Wrap(s string, width int) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		cur   strings.Builder
		col   int
	)
	for _, word := range words {
		w := uniseg.StringWidth(word)
		if col > 0 && col+1+w > width {
			lines = append(lines, cur.String())
			cur.Reset()
			col = 0
		}
		if col > 0 {
			cur.WriteByte(' ')
			col++
		}
		cur.WriteString(word)
		col += w
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// Prefix wraps s and prepends prefix to every resulting line, which is how
// backends turn long description strings into comment blocks.
func Prefix(s, prefix string, width int) []string {
	lines := Wrap(s, width)
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return lines
}
