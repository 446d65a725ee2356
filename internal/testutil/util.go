// Package testutil has helpers shared by tests, mostly for comparing
// generated text output against expectations.
package testutil

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

// RequireEqualText fails the test with a unified diff when got differs
// from want. Trailing whitespace on each line is ignored so expectations
// can be written as raw string literals.
func RequireEqualText(t *testing.T, want, got string) {
	t.Helper()
	w, g := trimLines(want), trimLines(got)
	if w == g {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(w),
		B:        difflib.SplitLines(g),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	require.NoError(t, err)
	t.Fatalf("output mismatch:\n%s", diff)
}

// RequireContainsLines asserts that each of the given lines appears
// somewhere in the output, in order.
func RequireContainsLines(t *testing.T, output string, lines ...string) {
	t.Helper()
	rest := output
	for _, l := range lines {
		idx := strings.Index(rest, l)
		if idx < 0 {
			t.Fatalf("output does not contain %q (in order); output:\n%s", l, output)
		}
		rest = rest[idx+len(l):]
	}
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
