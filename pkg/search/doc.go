// Package search finds the cheapest plan for a start state.
//
// # Strategies
//
// [Naive] builds a plan directly: throw while fewer outcomes than the
// target are held, then map exactly target outcomes. It is fast, always
// resolved, and rarely optimal. [NaiveSolver] exposes it as a
// [heuristic.Solver].
//
// [Run] performs a breadth-first branch-and-bound search over partial
// plans. The naive plan seeds the upper bound. Every queued candidate is a
// (plan, state, move) triple; applying it yields a new plan whose cost is
// evaluated with [Options.Heuristic]. A plan is expanded further only if
// its text rendering has not been seen before and its cost does not exceed
// the best exact cost known. Plans with an infinite cost are dropped.
//
// # Termination
//
// The search stops when the queue is empty, in which case the result is
// optimal, when [Options.MaxIterations] is reached, or when the context is
// canceled. The latter two return the best plan found so far:
//
//	res, err := search.Run(ctx, plan.NewState(6, 8), search.Options{MaxIterations: 1_000_000})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Plan)
//	fmt.Println(res.Cost, res.Optimal())
//
// # Memory
//
// Queued candidates share their parent plan. The plan is copied only when
// a candidate is applied while other candidates still refer to it; the
// last candidate reuses it in place.
package search
