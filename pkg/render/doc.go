// Package render draws plan graphs.
//
// [ToDOT] converts a plan to Graphviz DOT: one node per state reachable
// from the start, throw edges solid, map edges labeled with the number of
// units mapped, and edges to a map's remaining state dashed. [RenderSVG]
// lays the DOT out with the embedded Graphviz library:
//
//	dot := render.ToDOT(res.Plan, render.Options{Costs: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToPDF], [ToPNG] and [Converter] convert the SVG further using the external
// rsvg-convert tool (from librsvg).
package render
