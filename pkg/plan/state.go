package plan

import "fmt"

// State is one configuration of the problem. States are small comparable
// values and are used directly as map keys.
type State struct {
	Source int `json:"source"` // faces of the die being thrown
	Target int `json:"target"` // outcomes still to be chosen between
	Units  int `json:"units"`  // equally likely outcomes currently held
}

// NewState returns the initial state for simulating a target-sided die
// with a source-sided one: a single unit, nothing thrown yet.
func NewState(source, target int) State {
	return State{Source: source, Target: target, Units: 1}
}

// Solved reports whether the state has nothing left to choose.
func (s State) Solved() bool { return s.Target == 1 }

// String renders the state as "units/target".
func (s State) String() string { return fmt.Sprintf("%d/%d", s.Units, s.Target) }

// less orders states by target, then units, then source.
func (s State) less(o State) bool {
	if s.Target != o.Target {
		return s.Target < o.Target
	}
	if s.Units != o.Units {
		return s.Units < o.Units
	}
	return s.Source < o.Source
}

// compareStates is a comparison function for slices.SortFunc.
func compareStates(a, b State) int {
	switch {
	case a.less(b):
		return -1
	case b.less(a):
		return 1
	default:
		return 0
	}
}

// MoveKind distinguishes the two moves.
type MoveKind int

const (
	// MoveThrow throws the die once more.
	MoveThrow MoveKind = iota
	// MoveMap maps a number of units to a sub-problem.
	MoveMap
)

// Move is a decision taken at a pending state.
type Move struct {
	Kind  MoveKind
	Units int // units mapped to the sub-problem; zero for throws
}

// Throw returns the throw move.
func Throw() Move { return Move{Kind: MoveThrow} }

// Map returns the move committing n units to a sub-problem of target/n.
func Map(n int) Move { return Move{Kind: MoveMap, Units: n} }

func (m Move) String() string {
	if m.Kind == MoveThrow {
		return "throw"
	}
	return fmt.Sprintf("map(%d)", m.Units)
}

// Action pairs a pending state with a move that may be applied to it.
type Action struct {
	State State
	Move  Move
}

func (a Action) String() string { return fmt.Sprintf("%s at %s", a.Move, a.State) }
