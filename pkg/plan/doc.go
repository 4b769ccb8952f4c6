// Package plan models strategies for simulating a fair die with another die
// as a graph of states, and evaluates their expected cost.
//
// # Overview
//
// A [State] (source, target, units) describes a partially thrown problem:
// we hold one of units equally likely outcomes of a source-sided die and
// want to select one of target outcomes. Two moves exist:
//
//   - [Throw]: throw again, multiplying units by source
//   - [Map]: commit n outcomes to a smaller sub-problem with target/n
//     choices, leaving units-n outcomes in a remaining state
//
// A [Graph] maps every reachable state to a [Branch]: solved, pending
// (not yet decided), or the move that was chosen. Because a map can leave
// a remainder that equals a state seen earlier, plan graphs may contain
// cycles.
//
// # Building Plans
//
// Graphs grow one decision at a time with [Graph.Apply], which resolves a
// single pending state and inserts the states the move leads to:
//
//	g := plan.New(plan.NewState(2, 3))
//	g.Apply(plan.NewState(2, 3), plan.Throw())
//	g.Apply(plan.State{Source: 2, Target: 3, Units: 2}, plan.Throw())
//	g.Apply(plan.State{Source: 2, Target: 3, Units: 4}, plan.Map(3))
//
// [Graph.PossibleActions] enumerates every move that may be applied next.
//
// # Cost
//
// [Graph.Cost] computes the expected number of throws from the start state.
// Pending states are priced by a [Heuristic] and taint the result as
// estimated. Cycles are solved algebraically: while a cycle is open the
// cost is carried as a linear form a*x + b of the cycle root's unknown cost
// x, and the equation x = a*x + b is solved when evaluation returns to the
// root. The plan above costs 8/3 throws.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Cost evaluation only reads
// the graph, so an unshared graph may be evaluated from several goroutines
// once construction is finished.
package plan
