package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diceplan/pkg/pipeline"
	"github.com/matzehuels/diceplan/pkg/plan"
)

const defaultRenderOutput = "plan.svg"

// renderOpts holds the flags of the render command.
type renderOpts struct {
	searchFlags
	output string // output file; its extension picks the format
	format string // explicit format, overriding the extension
	naive  bool   // draw the naive plan instead of searching
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: defaultRenderOutput}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the best plan as a graph",
		Long: `Search for the best plan and draw it with Graphviz. Each state is labeled
with its units, its target and the expected throws from it.

The format follows the output extension (.dot, .svg, .png, .pdf) unless
--format is given. PNG and PDF output need rsvg-convert on PATH.`,
		Example: `  diceplan render -s 6 -t 8 -o plan.svg
  diceplan render -s 2 -t 3 --naive -o naive.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runRender(cmd, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png, pdf (default from extension)")
	cmd.Flags().BoolVar(&opts.naive, "naive", false, "draw the naive plan without searching")

	return cmd
}

// graphFormats are the formats render can produce.
var graphFormats = []string{pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF}

// formatFor returns the explicit format, or the one implied by the output
// file's extension, defaulting to SVG.
func formatFor(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if slices.Contains(graphFormats, ext) {
		return ext
	}
	return pipeline.FormatSVG
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format := formatFor(opts.output, opts.format)
	if !slices.Contains(graphFormats, format) {
		return fmt.Errorf("render: format must be one of %s, got %q", strings.Join(graphFormats, ", "), format)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.overlay(cmd, cfg); err != nil {
		return err
	}

	runner, closeRunner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRunner()

	var g *plan.Graph
	if opts.naive {
		res, err := runner.Naive(cfg.Search.Source, cfg.Search.Target)
		if err != nil {
			return err
		}
		g = res.Plan
	} else {
		popts := opts.options(cfg)
		popts.Logger = logger
		res, err := c.search(cmd, runner, popts, false)
		if err != nil {
			return err
		}
		g = res.Plan
	}

	sw := startStopwatch(logger)
	data, err := pipeline.RenderPlan(ctx, g, format)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	sw.done("Rendered " + opts.output)
	printSuccess(cmd.ErrOrStderr(), "Rendered %d states as %s", g.Len(), format)
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}
