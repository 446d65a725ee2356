package toposort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	name string
	deps []string
}

func sortGraph(nodes []node) (order []string, cycles [][]string) {
	byName := map[string]node{}
	for _, n := range nodes {
		byName[n.name] = n
	}
	ordered, cyc := Sort(nodes,
		func(n node) string { return n.name },
		func(n node) []node {
			var out []node
			for _, d := range n.deps {
				if dep, ok := byName[d]; ok {
					out = append(out, dep)
				}
			}
			return out
		})
	for _, n := range ordered {
		order = append(order, n.name)
	}
	for _, c := range cyc {
		names := make([]string, len(c))
		for i, n := range c {
			names[i] = n.name
		}
		cycles = append(cycles, names)
	}
	return order, cycles
}

func TestSortLinear(t *testing.T) {
	t.Parallel()
	order, cycles := sortGraph([]node{
		{name: "outer", deps: []string{"middle"}},
		{name: "middle", deps: []string{"inner"}},
		{name: "inner"},
	})
	assert.Empty(t, cycles)
	assert.Equal(t, []string{"inner", "middle", "outer"}, order)
}

func TestSortDiamond(t *testing.T) {
	t.Parallel()
	order, cycles := sortGraph([]node{
		{name: "top", deps: []string{"left", "right"}},
		{name: "left", deps: []string{"base"}},
		{name: "right", deps: []string{"base"}},
		{name: "base"},
	})
	assert.Empty(t, cycles)
	require.Len(t, order, 4)
	assert.Equal(t, "base", order[0])
	assert.Equal(t, "top", order[3])
}

func TestSortCycle(t *testing.T) {
	t.Parallel()
	order, cycles := sortGraph([]node{
		{name: "p", deps: []string{"q"}},
		{name: "q", deps: []string{"p"}},
		{name: "standalone"},
	})
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"p", "q"}, cycles[0])
	// cycle members are excluded from the order
	assert.Equal(t, []string{"standalone"}, order)
}

func TestSortSelfCycle(t *testing.T) {
	t.Parallel()
	order, cycles := sortGraph([]node{
		{name: "recursive", deps: []string{"recursive"}},
	})
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"recursive"}, cycles[0])
	assert.Empty(t, order)
}

func TestSortDependentOfCycleStillOrdered(t *testing.T) {
	t.Parallel()
	order, cycles := sortGraph([]node{
		{name: "user", deps: []string{"p"}},
		{name: "p", deps: []string{"q"}},
		{name: "q", deps: []string{"p"}},
	})
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"user"}, order)
}
