package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// RenderSVG lays out a DOT graph with the dot engine and returns an SVG
// document that can be embedded inline in HTML or converted further with
// [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.DOT)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return tidySVG(buf.Bytes()), nil
}

var (
	svgOpenRe = regexp.MustCompile(`<svg\b[^>]*>`)
	attrRe    = regexp.MustCompile(`\s(width|height|viewBox)="([^"]*)"`)
)

// tidySVG drops everything Graphviz writes before the root element (XML
// prolog, doctype, generator comments) and rewrites the root's size so
// the viewBox starts at the origin and width and height are unitless.
func tidySVG(svg []byte) []byte {
	loc := svgOpenRe.FindIndex(svg)
	if loc == nil {
		return svg
	}
	open := svg[loc[0]:loc[1]]

	box := strings.Fields(attrValue(open, "viewBox"))
	if len(box) != 4 {
		return svg[loc[0]:]
	}
	w, errW := strconv.ParseFloat(box[2], 64)
	h, errH := strconv.ParseFloat(box[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return svg[loc[0]:]
	}

	rest := attrRe.ReplaceAll(open[len("<svg"):], nil)
	var out bytes.Buffer
	out.Grow(len(svg) - loc[0])
	fmt.Fprintf(&out, `<svg width="%.0f" height="%.0f" viewBox="0 0 %.2f %.2f"`, w, h, w, h)
	out.Write(rest)
	out.Write(svg[loc[1]:])
	return out.Bytes()
}

func attrValue(tag []byte, name string) string {
	for _, m := range attrRe.FindAllSubmatch(tag, -1) {
		if string(m[1]) == name {
			return string(m[2])
		}
	}
	return ""
}
