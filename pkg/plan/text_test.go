package plan

import (
	"strings"
	"testing"
)

func TestString_Cycle(t *testing.T) {
	start := NewState(2, 3)
	g := New(start)
	_ = g.Apply(start, Throw())
	_ = g.Apply(State{Source: 2, Target: 3, Units: 2}, Throw())
	_ = g.Apply(State{Source: 2, Target: 3, Units: 4}, Map(3))

	want := strings.Join([]string{
		"Plan for 2: 1/3",
		"1/3 -> throw to 2/3",
		"2/3 -> throw to 4/3",
		"4/3 -> map 3 to 1/1 and 1/3",
		"1/1 -> solved",
		"",
	}, "\n")
	if got := g.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestString_Pending(t *testing.T) {
	state := State{Source: 5, Target: 6, Units: 17}
	g := New(state)
	_ = g.Apply(state, Map(2))

	want := strings.Join([]string{
		"Plan for 5: 17/6",
		"17/6 -> map 2 to 1/3 and 15/6",
		"1/3 -> pending (min_map_units = 2)",
		"15/6 -> pending (min_map_units = 2)",
		"",
	}, "\n")
	if got := g.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestString_DistinguishesFloors(t *testing.T) {
	a := New(State{Source: 5, Target: 6, Units: 9})
	_ = a.Apply(a.Start(), Map(3))

	b := New(State{Source: 5, Target: 6, Units: 9})
	_ = b.Apply(b.Start(), Map(2))

	if a.String() == b.String() {
		t.Error("different plans rendered identically")
	}
}

func TestWalk_VisitsOnce(t *testing.T) {
	start := NewState(2, 4)
	g := New(start)
	_ = g.Apply(start, Throw())
	_ = g.Apply(State{Source: 2, Target: 4, Units: 2}, Map(2))
	_ = g.Apply(State{Source: 2, Target: 2, Units: 1}, Throw())

	seen := map[State]int{}
	g.Walk(func(s State, _ Branch) { seen[s]++ })
	for s, n := range seen {
		if n != 1 {
			t.Errorf("state %s visited %d times", s, n)
		}
	}
	if len(seen) != g.Len() {
		t.Errorf("Walk visited %d states, want %d", len(seen), g.Len())
	}
}

func TestDescribe(t *testing.T) {
	g := New(NewState(2, 3))
	if got := g.Describe(g.Start()); got != "pending (min_map_units = 2)" {
		t.Errorf("Describe(start) = %q", got)
	}
	if got := g.Describe(State{Source: 9, Target: 9, Units: 9}); got != "" {
		t.Errorf("Describe(missing) = %q, want empty", got)
	}
}
