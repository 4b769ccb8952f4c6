package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoConverter reports that the rsvg-convert binary is not on PATH.
var ErrNoConverter = errors.New("rsvg-convert not found (install librsvg: brew install librsvg, apt install librsvg2-bin)")

// Converter turns SVG documents into raster or print formats by piping
// them through rsvg-convert. The zero value looks the binary up on PATH.
type Converter struct {
	Binary string  // defaults to "rsvg-convert"
	Scale  float64 // PNG zoom factor; 0 means 2
}

// ToPDF converts svg to PDF with the default [Converter].
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return Converter{}.Convert(ctx, svg, "pdf")
}

// ToPNG converts svg to PNG at the given zoom factor.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return Converter{Scale: scale}.Convert(ctx, svg, "png")
}

// Convert runs the converter for format ("png" or "pdf").
func (c Converter) Convert(ctx context.Context, svg []byte, format string) ([]byte, error) {
	args := []string{"--format", format}
	switch format {
	case "pdf":
	case "png":
		scale := c.Scale
		if scale <= 0 {
			scale = 2
		}
		args = append(args, "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
	default:
		return nil, fmt.Errorf("convert: unsupported format %q", format)
	}

	bin := c.Binary
	if bin == "" {
		bin = "rsvg-convert"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%s output: %w", format, ErrNoConverter)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", bin, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", bin, err)
	}
	return stdout.Bytes(), nil
}
