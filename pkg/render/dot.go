package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/diceplan/pkg/plan"
)

// Options configures plan rendering.
type Options struct {
	// Costs adds each state's expected remaining cost to its label.
	Costs bool
	// Heuristic prices pending states when Costs is set. Nil means
	// [plan.Zero].
	Heuristic plan.Heuristic
}

// ToDOT converts a plan to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Solved states are drawn as double circles and pending states with dashed
// outlines, so unfinished parts of a plan stand out. Each node's tooltip is
// its line of the plan text.
func ToDOT(g *plan.Graph, opts Options) string {
	h := opts.Heuristic
	if h == nil {
		h = plan.Zero
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("d%d: %s", g.Start().Source, g.Start()))
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("\n")

	var edges []string
	g.Walk(func(s plan.State, b plan.Branch) {
		label := s.String()
		if opts.Costs {
			label += "\n" + g.CostFrom(s, h).String()
		}
		attrs := append(fmtAttrs(b, label), fmt.Sprintf("tooltip=%q", g.Describe(s)))
		fmt.Fprintf(&buf, "  %q [%s];\n", s.String(), strings.Join(attrs, ", "))

		switch b.Kind {
		case plan.BranchThrow:
			edges = append(edges, fmt.Sprintf("  %q -> %q [label=\"throw\"];\n", s.String(), b.Next.String()))
		case plan.BranchMap:
			edges = append(edges, fmt.Sprintf("  %q -> %q [label=\"map %d\"];\n", s.String(), b.SubProblem.String(), b.Units))
			if b.HasRemaining {
				edges = append(edges, fmt.Sprintf("  %q -> %q [style=dashed, label=\"rest\"];\n", s.String(), b.Remaining.String()))
			}
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(b plan.Branch, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch b.Kind {
	case plan.BranchSolved:
		attrs = append(attrs, "shape=doublecircle", "fillcolor=\"#d8f3dc\"")
	case plan.BranchPending:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}
