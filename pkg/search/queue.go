package search

import "github.com/matzehuels/diceplan/pkg/plan"

// sharedPlan is a plan referenced by queued candidates and possibly by the
// incumbent. refs counts those holders.
type sharedPlan struct {
	graph *plan.Graph
	refs  int
}

func share(g *plan.Graph) *sharedPlan { return &sharedPlan{graph: g} }

func (p *sharedPlan) acquire() *sharedPlan {
	p.refs++
	return p
}

func (p *sharedPlan) release() { p.refs-- }

// take gives up one reference and returns a graph the caller owns. The
// last holder receives the graph itself, everyone else a copy.
func (p *sharedPlan) take() *plan.Graph {
	p.refs--
	if p.refs == 0 {
		g := p.graph
		p.graph = nil
		return g
	}
	return p.graph.Clone()
}

type candidate struct {
	plan   *sharedPlan
	action plan.Action
}

// queue is a FIFO of candidates backed by a slice. Popped slots are
// reclaimed once they make up half of the backing array.
type queue struct {
	items []candidate
	head  int
}

func (q *queue) push(c candidate) { q.items = append(q.items, c) }

func (q *queue) pop() candidate {
	c := q.items[q.head]
	q.items[q.head] = candidate{}
	q.head++
	if q.head >= 1024 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return c
}

func (q *queue) len() int { return len(q.items) - q.head }
