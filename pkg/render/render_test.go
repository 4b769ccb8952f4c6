package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/diceplan/pkg/plan"
)

// cyclePlan resolves a d3 with a d2: throw twice, map three of four
// outcomes, start over with the last one.
func cyclePlan(t *testing.T) *plan.Graph {
	t.Helper()
	g := plan.New(plan.NewState(2, 3))
	steps := []struct {
		units int
		move  plan.Move
	}{
		{1, plan.Throw()},
		{2, plan.Throw()},
		{4, plan.Map(3)},
	}
	for _, s := range steps {
		if err := g.Apply(plan.State{Source: 2, Target: 3, Units: s.units}, s.move); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(cyclePlan(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`"1/3" -> "2/3" [label="throw"];`,
		`"2/3" -> "4/3" [label="throw"];`,
		`"4/3" -> "1/1" [label="map 3"];`,
		`"4/3" -> "1/3" [style=dashed, label="rest"];`,
		`"1/1" [label="1/1", shape=doublecircle`,
		`tooltip="map 3 to 1/1 and 1/3"]`,
		`tooltip="throw to 2/3"]`,
		`tooltip="solved"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, `"1/3" [label=`) != 1 {
		t.Errorf("start state should be declared once:\n%s", dot)
	}
}

func TestToDOTPendingAndCosts(t *testing.T) {
	g := plan.New(plan.NewState(2, 3))
	dot := ToDOT(g, Options{Costs: true})

	if !strings.Contains(dot, `tooltip="pending (min_map_units = 2)"`) {
		t.Errorf("pending state tooltip missing:\n%s", dot)
	}
	if !strings.Contains(dot, "dashed") {
		t.Errorf("pending state should be dashed:\n%s", dot)
	}
	if !strings.Contains(dot, `label="1/3\n~0"`) {
		t.Errorf("pending cost should be marked estimated:\n%s", dot)
	}

	dot = ToDOT(cyclePlan(t), Options{Costs: true})
	if !strings.Contains(dot, `label="1/1\n0"`) {
		t.Errorf("solved state should cost 0:\n%s", dot)
	}
}

func TestTidySVG(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "graphviz output",
			in: `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<!-- Generated by graphviz -->
<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			want: `<svg width="100" height="50" viewBox="0 0 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
		},
		{
			name: "no viewBox",
			in:   `<!-- c --><svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "empty box",
			in:   `<svg viewBox="0 0 0 0"><g/></svg>`,
			want: `<svg viewBox="0 0 0 0"><g/></svg>`,
		},
		{
			name: "not svg",
			in:   `<html/>`,
			want: `<html/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tidySVG([]byte(tt.in))); got != tt.want {
				t.Errorf("tidySVG =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(cyclePlan(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Errorf("output should start at the root element: %.40s", svg)
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected error for invalid DOT")
	}
}

func TestConverterErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := (Converter{}).Convert(ctx, nil, "gif"); err == nil {
		t.Error("expected error for unsupported format")
	}
	_, err := Converter{Binary: "diceplan-no-such-converter"}.Convert(ctx, nil, "pdf")
	if !errors.Is(err, ErrNoConverter) {
		t.Errorf("missing binary: err = %v, want ErrNoConverter", err)
	}
}
