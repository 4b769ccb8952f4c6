package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/diceplan/pkg/plan"
	"github.com/matzehuels/diceplan/pkg/render"
)

// Render formats a search result. Text output is the plan followed by the
// heuristic and exact costs; JSON output is the whole result. Graph
// formats draw the plan with per-state costs.
func Render(ctx context.Context, res *Result, format string) ([]byte, error) {
	switch format {
	case FormatText:
		var sb strings.Builder
		sb.WriteString(res.Plan.String())
		fmt.Fprintf(&sb, "Heuristic cost = %g\n", res.HeuristicCost)
		fmt.Fprintf(&sb, "Cost = %g\n", res.Cost)
		return []byte(sb.String()), nil
	case FormatJSON:
		return json.MarshalIndent(res, "", "  ")
	default:
		return RenderPlan(ctx, res.Plan, format)
	}
}

// RenderPlan formats a single plan.
func RenderPlan(ctx context.Context, g *plan.Graph, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case FormatText:
		return []byte(g.String()), nil
	case FormatJSON:
		return json.MarshalIndent(g, "", "  ")
	}

	dot := render.ToDOT(g, render.Options{Costs: true})
	if format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return render.ToPNG(ctx, svg, 2.0)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	default:
		return svg, nil
	}
}
