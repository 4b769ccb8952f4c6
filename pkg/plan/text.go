package plan

import (
	"fmt"
	"strings"
)

// String renders the plan as text, one line per state in breadth-first
// order from the start:
//
//	Plan for 2: 1/3
//	1/3 -> throw to 2/3
//	2/3 -> throw to 4/3
//	4/3 -> map 3 to 1/1 and 1/3
//	1/1 -> solved
//
// Each state appears once even when several moves lead to it. Two plans
// render identically exactly when they make the same decisions for every
// state reachable from the start.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan for %d: %s\n", g.start.Source, g.start)
	g.Walk(func(state State, b Branch) {
		sb.WriteString(state.String())
		sb.WriteString(" -> ")
		sb.WriteString(b.describe())
		sb.WriteByte('\n')
	})
	return sb.String()
}

// Walk calls fn for every state reachable from the start, breadth-first,
// visiting each state once.
func (g *Graph) Walk(fn func(State, Branch)) {
	seen := map[State]bool{g.start: true}
	queue := []State{g.start}

	visit := func(s State) {
		if !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		b := g.branches[state]
		fn(state, b)

		switch b.Kind {
		case BranchThrow:
			visit(b.Next)
		case BranchMap:
			visit(b.SubProblem)
			if b.HasRemaining {
				visit(b.Remaining)
			}
		}
	}
}

// describe renders the right-hand side of a plan line.
func (b Branch) describe() string {
	switch b.Kind {
	case BranchSolved:
		return "solved"
	case BranchPending:
		return fmt.Sprintf("pending (min_map_units = %d)", b.MinMapUnits)
	case BranchThrow:
		return "throw to " + b.Next.String()
	case BranchMap:
		s := fmt.Sprintf("map %d to %s", b.Units, b.SubProblem)
		if b.HasRemaining {
			s += " and " + b.Remaining.String()
		}
		return s
	default:
		return b.Kind.String()
	}
}

// Describe renders the resolution of state as it appears in [Graph.String],
// or the empty string if state is not part of the plan.
func (g *Graph) Describe(state State) string {
	b, ok := g.branches[state]
	if !ok {
		return ""
	}
	return b.describe()
}
