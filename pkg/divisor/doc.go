// Package divisor precomputes the divisor structure of a single target value.
//
// # Overview
//
// A plan for a target T only ever visits sub-problems whose target divides
// T, and a Map move at such a state can only split off a unit count that
// divides the state's target. [Table] answers "which divisors may be used
// here?" for every divisor of T in constant time.
//
//	t := divisor.NewTable(84)
//	t.Divisors(84) // [2 3 4 6 7 12 14 21 28 42 84]
//	t.Divisors(12) // [2 3 4 6 12]
//
// Divisors are always returned in ascending order, which lets callers stop
// at the first value that is too large instead of scanning the whole list.
//
// # Concurrency
//
// A Table is immutable after [NewTable] returns and is safe for concurrent
// use by multiple goroutines.
package divisor
