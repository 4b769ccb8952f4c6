package search

import (
	"fmt"

	"github.com/matzehuels/diceplan/pkg/heuristic"
	"github.com/matzehuels/diceplan/pkg/plan"
)

// NaiveSolver prices states with the naive strategy.
var NaiveSolver heuristic.Solver = heuristic.SolverFunc(Naive)

// Naive returns the naive plan for start: the first pending state in
// (target, units) order is thrown while it holds fewer units than its
// target and mapped to its full target otherwise, until nothing is
// pending. start.Source must be at least 2.
func Naive(start plan.State) *plan.Graph {
	g := plan.New(start)
	for !g.Resolved() {
		s := g.Pending()[0]
		move := plan.Throw()
		if s.Units >= s.Target {
			move = plan.Map(s.Target)
		}
		if err := g.Apply(s, move); err != nil {
			panic(fmt.Sprintf("search: naive plan: %v", err))
		}
	}
	return g
}
