// Package toposort provides a generic topological sort with cycle
// reporting. The layout compiler uses it to order packets so that
// substructures are compiled before the packets that contain them.
package toposort

const (
	unsorted byte = iota
	walking
	sorted
)

// Sort orders nodes so that every node appears after all of its
// dependencies. key extracts a comparable identity for marking, and deps
// returns the dependencies of a node.
//
// Nodes that participate in a dependency cycle are excluded from the order
// and returned in cycles instead, one slice per distinct cycle, each in
// walk order. Dependents of a cycle still appear in the order; it is the
// caller's job to fail them when their dependency is missing.
func Sort[Node any, Key comparable](
	nodes []Node,
	key func(Node) Key,
	deps func(Node) []Node,
) (order []Node, cycles [][]Node) {
	s := sorter[Node, Key]{
		key:     key,
		deps:    deps,
		state:   make(map[Key]byte, len(nodes)),
		inCycle: make(map[Key]bool),
	}
	for _, n := range nodes {
		s.visit(n)
	}
	return s.order, s.cycles
}

type sorter[Node any, Key comparable] struct {
	key  func(Node) Key
	deps func(Node) []Node

	state   map[Key]byte
	stack   []Node
	order   []Node
	cycles  [][]Node
	inCycle map[Key]bool
}

func (s *sorter[Node, Key]) visit(n Node) {
	k := s.key(n)
	switch s.state[k] {
	case sorted:
		return
	case walking:
		// Back edge: everything on the stack from n onward is a cycle.
		s.recordCycle(k)
		return
	}
	s.state[k] = walking
	s.stack = append(s.stack, n)
	for _, dep := range s.deps(n) {
		s.visit(dep)
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.state[k] = sorted
	if !s.inCycle[k] {
		s.order = append(s.order, n)
	}
}

func (s *sorter[Node, Key]) recordCycle(from Key) {
	start := len(s.stack) - 1
	for start >= 0 && s.key(s.stack[start]) != from {
		start--
	}
	if start < 0 {
		return
	}
	cycle := make([]Node, len(s.stack)-start)
	copy(cycle, s.stack[start:])
	for _, n := range cycle {
		s.inCycle[s.key(n)] = true
	}
	s.cycles = append(s.cycles, cycle)
}
