package divisor

// Table holds, for a fixed target T, the sorted divisors (excluding 1) of
// every divisor of T. The zero value is not usable; use [NewTable].
type Table struct {
	target   int
	divisors map[int][]int
}

// NewTable builds the divisor table for target using trial division.
//
// For every d in [2, target] dividing target, Divisors(d) lists the divisors
// of d drawn from target's own divisor set. Construction is O(target^2) in
// the worst case. A target below 2 yields an empty table.
func NewTable(target int) *Table {
	t := &Table{target: target, divisors: make(map[int][]int)}

	var main []int
	for d := 2; d <= target; d++ {
		if target%d == 0 {
			main = append(main, d)
		}
	}

	for _, n := range main {
		var ds []int
		for _, d := range main {
			if d > n {
				break
			}
			if n%d == 0 {
				ds = append(ds, d)
			}
		}
		t.divisors[n] = ds
	}
	if len(main) > 0 {
		t.divisors[target] = main
	}

	return t
}

// Target returns the value the table was built for.
func (t *Table) Target() int { return t.target }

// Divisors returns the ascending divisors of n, excluding 1.
//
// n must itself divide the table's target; any other value returns nil.
// The returned slice is shared with the table and must not be modified.
func (t *Table) Divisors(n int) []int { return t.divisors[n] }

// Len returns the number of precomputed entries, one per divisor of the
// target greater than 1.
func (t *Table) Len() int { return len(t.divisors) }
