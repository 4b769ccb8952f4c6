package plan

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/diceplan/pkg/divisor"
)

var (
	// ErrStateDoesNotExist is returned by [Graph.Apply] when the state is not
	// part of the graph. It indicates an action list that was derived from a
	// different graph.
	ErrStateDoesNotExist = errors.New("state does not exist")

	// ErrStateNotPending is returned by [Graph.Apply] when the state has
	// already been resolved.
	ErrStateNotPending = errors.New("state is not pending")

	// ErrMapDoesNotDivide is returned by [Graph.Apply] when a map's unit count
	// does not divide the state's target.
	ErrMapDoesNotDivide = errors.New("map units do not divide target")

	// ErrMapTooFewUnits is returned by [Graph.Apply] when a map's unit count
	// is below the state's minimum map units.
	ErrMapTooFewUnits = errors.New("map units below minimum")

	// ErrMapTooManyUnits is returned by [Graph.Apply] when a map's unit count
	// exceeds the units held by the state.
	ErrMapTooManyUnits = errors.New("map units exceed available units")
)

// defaultMinMapUnits is the floor for states not created as a remainder.
const defaultMinMapUnits = 2

// BranchKind is the resolution status of a state in a [Graph].
type BranchKind int

const (
	// BranchSolved marks a terminal state (target 1), cost zero.
	BranchSolved BranchKind = iota
	// BranchPending marks a state whose move has not been decided yet.
	BranchPending
	// BranchThrow marks a state resolved by throwing again.
	BranchThrow
	// BranchMap marks a state resolved by mapping units to a sub-problem.
	BranchMap
)

func (k BranchKind) String() string {
	switch k {
	case BranchSolved:
		return "solved"
	case BranchPending:
		return "pending"
	case BranchThrow:
		return "throw"
	case BranchMap:
		return "map"
	default:
		return fmt.Sprintf("BranchKind(%d)", int(k))
	}
}

// Branch is the resolution of a single state. Which fields are meaningful
// depends on Kind.
type Branch struct {
	Kind BranchKind

	// MinMapUnits is the smallest admissible map at a pending state. A state
	// left over after mapping n units may only be split further by n or more
	// units, since smaller splits were already available before the larger one.
	MinMapUnits int

	// Next is the state reached by a throw.
	Next State

	// Units is the number of units a map commits to SubProblem.
	Units int
	// SubProblem is the state with target divided by Units and a single unit.
	SubProblem State
	// Remaining holds the leftover units at the same target when HasRemaining.
	Remaining    State
	HasRemaining bool
}

// Graph is a plan: every state reachable from the start mapped to its
// resolution. States are stored by value, so the graph holds no references
// between entries and cycles need no special ownership handling.
//
// Once resolved, a state's branch never changes; replanning a state means
// working on a [Graph.Clone].
type Graph struct {
	start    State
	branches map[State]Branch
}

// New creates a plan containing only start, pending unless already solved.
func New(start State) *Graph {
	g := &Graph{
		start:    start,
		branches: make(map[State]Branch),
	}
	g.ensure(start, defaultMinMapUnits)
	return g
}

// Start returns the state the plan begins at.
func (g *Graph) Start() State { return g.start }

// Len returns the number of states in the plan.
func (g *Graph) Len() int { return len(g.branches) }

// Branch returns the resolution of state and whether it is in the plan.
func (g *Graph) Branch(state State) (Branch, bool) {
	b, ok := g.branches[state]
	return b, ok
}

// States returns every state in the plan in ascending (target, units) order.
func (g *Graph) States() []State {
	return slices.SortedFunc(maps.Keys(g.branches), compareStates)
}

// Pending returns the undecided states in ascending (target, units) order.
func (g *Graph) Pending() []State {
	var pending []State
	for _, s := range g.States() {
		if g.branches[s].Kind == BranchPending {
			pending = append(pending, s)
		}
	}
	return pending
}

// Resolved reports whether no pending states are left.
func (g *Graph) Resolved() bool {
	for _, b := range g.branches {
		if b.Kind == BranchPending {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the plan.
func (g *Graph) Clone() *Graph {
	return &Graph{start: g.start, branches: maps.Clone(g.branches)}
}

// PossibleActions lists every move that may be applied to the plan's
// pending states: a throw, and a map for each divisor n of the state's
// target with MinMapUnits <= n <= units.
//
// The table must have been built for the start state's target. States are
// visited in ascending (target, units) order, so the result is deterministic.
func (g *Graph) PossibleActions(t *divisor.Table) []Action {
	var actions []Action
	for _, state := range g.Pending() {
		minUnits := g.branches[state].MinMapUnits
		actions = append(actions, Action{State: state, Move: Throw()})

		for _, n := range t.Divisors(state.Target) {
			if n > state.Units {
				break
			}
			if n >= minUnits {
				actions = append(actions, Action{State: state, Move: Map(n)})
			}
		}
	}
	return actions
}

// Apply resolves a pending state with move and inserts the states it leads
// to. New states are pending, or solved when their target is 1; states
// already in the plan are reused as is.
func (g *Graph) Apply(state State, move Move) error {
	prev, ok := g.branches[state]
	if !ok {
		return fmt.Errorf("apply %s to %s: %w", move, state, ErrStateDoesNotExist)
	}
	if prev.Kind != BranchPending {
		return fmt.Errorf("apply %s to %s: %w", move, state, ErrStateNotPending)
	}

	switch move.Kind {
	case MoveThrow:
		next := State{Source: state.Source, Target: state.Target, Units: state.Units * state.Source}
		g.branches[state] = Branch{Kind: BranchThrow, Next: g.ensure(next, defaultMinMapUnits)}
		return nil

	case MoveMap:
		n := move.Units
		switch {
		case n < 1:
			return fmt.Errorf("apply %s to %s: %w", move, state, ErrMapTooFewUnits)
		case state.Target%n != 0:
			return fmt.Errorf("apply %s to %s: %w", move, state, ErrMapDoesNotDivide)
		case n < prev.MinMapUnits:
			return fmt.Errorf("apply %s to %s (min %d): %w", move, state, prev.MinMapUnits, ErrMapTooFewUnits)
		case n > state.Units:
			return fmt.Errorf("apply %s to %s: %w", move, state, ErrMapTooManyUnits)
		}

		b := Branch{
			Kind:       BranchMap,
			Units:      n,
			SubProblem: g.ensure(State{Source: state.Source, Target: state.Target / n, Units: 1}, defaultMinMapUnits),
		}
		if rest := state.Units - n; rest > 0 {
			b.Remaining = g.ensure(State{Source: state.Source, Target: state.Target, Units: rest}, n)
			b.HasRemaining = true
		}
		g.branches[state] = b
		return nil

	default:
		return fmt.Errorf("apply %s to %s: unknown move kind %d", move, state, move.Kind)
	}
}

// ensure inserts state if absent and returns it.
func (g *Graph) ensure(state State, minMapUnits int) State {
	if _, ok := g.branches[state]; ok {
		return state
	}
	if state.Solved() {
		g.branches[state] = Branch{Kind: BranchSolved}
	} else {
		g.branches[state] = Branch{Kind: BranchPending, MinMapUnits: minMapUnits}
	}
	return state
}
