package plan

import (
	"encoding/json"
	"fmt"
)

// jsonGraph is the serialized form of a [Graph]. Nodes are listed in
// ascending (target, units) order.
type jsonGraph struct {
	Start State      `json:"start"`
	Nodes []jsonNode `json:"nodes"`
}

type jsonNode struct {
	State       State  `json:"state"`
	Kind        string `json:"kind"`
	MinMapUnits int    `json:"min_map_units,omitempty"`
	Next        *State `json:"next,omitempty"`
	Units       int    `json:"units,omitempty"`
	SubProblem  *State `json:"sub_problem,omitempty"`
	Remaining   *State `json:"remaining,omitempty"`
}

// MarshalJSON encodes the plan with one node per state.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := jsonGraph{Start: g.start, Nodes: make([]jsonNode, 0, len(g.branches))}
	for _, s := range g.States() {
		b := g.branches[s]
		n := jsonNode{State: s, Kind: b.Kind.String()}
		switch b.Kind {
		case BranchPending:
			n.MinMapUnits = b.MinMapUnits
		case BranchThrow:
			n.Next = &b.Next
		case BranchMap:
			n.Units = b.Units
			n.SubProblem = &b.SubProblem
			if b.HasRemaining {
				n.Remaining = &b.Remaining
			}
		}
		out.Nodes = append(out.Nodes, n)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a plan written by MarshalJSON. Every state a node
// refers to must itself be listed.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var in jsonGraph
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	branches := make(map[State]Branch, len(in.Nodes))
	for _, n := range in.Nodes {
		b, err := n.branch()
		if err != nil {
			return err
		}
		if _, dup := branches[n.State]; dup {
			return fmt.Errorf("plan: state %s listed twice", n.State)
		}
		branches[n.State] = b
	}

	if _, ok := branches[in.Start]; !ok {
		return fmt.Errorf("plan: start %s: %w", in.Start, ErrStateDoesNotExist)
	}
	for s, b := range branches {
		for _, ref := range b.refs() {
			if _, ok := branches[ref]; !ok {
				return fmt.Errorf("plan: %s refers to %s: %w", s, ref, ErrStateDoesNotExist)
			}
		}
	}

	g.start = in.Start
	g.branches = branches
	return nil
}

func (n jsonNode) branch() (Branch, error) {
	missing := func(field string) error {
		return fmt.Errorf("plan: %s node %s has no %s", n.Kind, n.State, field)
	}

	switch n.Kind {
	case "solved":
		return Branch{Kind: BranchSolved}, nil
	case "pending":
		return Branch{Kind: BranchPending, MinMapUnits: n.MinMapUnits}, nil
	case "throw":
		if n.Next == nil {
			return Branch{}, missing("next")
		}
		return Branch{Kind: BranchThrow, Next: *n.Next}, nil
	case "map":
		if n.SubProblem == nil {
			return Branch{}, missing("sub_problem")
		}
		b := Branch{Kind: BranchMap, Units: n.Units, SubProblem: *n.SubProblem}
		if n.Remaining != nil {
			b.Remaining, b.HasRemaining = *n.Remaining, true
		}
		return b, nil
	default:
		return Branch{}, fmt.Errorf("plan: unknown kind %q for %s", n.Kind, n.State)
	}
}

// refs returns the states b leads to.
func (b Branch) refs() []State {
	switch b.Kind {
	case BranchThrow:
		return []State{b.Next}
	case BranchMap:
		if b.HasRemaining {
			return []State{b.SubProblem, b.Remaining}
		}
		return []State{b.SubProblem}
	}
	return nil
}
