package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/pipeline"
	"github.com/matzehuels/diceplan/pkg/search"
)

// solveOpts holds the flags of the solve command.
type solveOpts struct {
	searchFlags
	format   string // output format: text, json, dot, svg, png, pdf
	output   string // output file; stdout when empty
	dumpFile string // visited-plan dump file
	tui      bool   // show the live monitor
	summary  bool   // print run statistics to stderr
}

func (c *CLI) solveCommand() *cobra.Command {
	opts := solveOpts{format: pipeline.FormatText, summary: true}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Search for the cheapest plan",
		Long: `Search for the plan with the lowest expected number of throws.

The plan is printed one state per line, followed by the cost the naive
heuristic estimated for the start and the exact cost of the plan found.`,
		Example: `  diceplan solve --source 6 --target 8
  diceplan solve -s 2 -t 6 --heuristic naive --tui
  diceplan solve -s 6 -t 10 --max-iterations 100000 --format json -o plan.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSolve(cmd, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, dot, svg, png, pdf")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the plan to a file instead of stdout")
	cmd.Flags().StringVar(&opts.dumpFile, "dump", "", "dump visited plans to this file every report interval")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show a live search monitor")
	cmd.Flags().BoolVar(&opts.summary, "summary", opts.summary, "print run statistics to stderr")

	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, opts *solveOpts) error {
	ctx := cmd.Context()
	if err := pipeline.ValidateFormat(opts.format); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.overlay(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("dump") {
		cfg.Dump.File = opts.dumpFile
	}
	if opts.tui && !cmd.Flags().Changed("report-every") && cfg.Search.ReportEvery == search.DefaultReportEvery {
		cfg.Search.ReportEvery = tuiReportEvery
	}

	runner, closeRunner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRunner()

	sink, closeSink, err := openDump(ctx, cfg.Dump)
	if err != nil {
		return err
	}
	defer closeSink()

	popts := opts.options(cfg)
	popts.Dump = sink
	popts.Logger = loggerFromContext(ctx)
	if opts.tui {
		// The monitor owns the terminal.
		popts.Logger = log.New(io.Discard)
	}

	res, err := c.search(cmd, runner, popts, opts.tui)
	if err != nil {
		return err
	}

	data, err := pipeline.Render(ctx, res, opts.format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	if opts.output != "" {
		printSuccess(stderr, "Wrote %s plan", opts.format)
		printFile(stderr, opts.output)
	}
	if cfg.Dump.File != "" {
		printDetail(stderr, "Visited plans dumped to %s", cfg.Dump.File)
	}
	if opts.summary && !opts.tui {
		printSummary(stderr, res)
	}
	if !res.Optimal {
		printWarning(stderr, "Search stopped early (%s); the plan may not be optimal", res.Stop)
	}
	return nil
}

// search runs the pipeline under the live monitor or behind a spinner.
func (c *CLI) search(cmd *cobra.Command, runner *pipeline.Runner, opts pipeline.Options, tui bool) (*pipeline.Result, error) {
	ctx := cmd.Context()
	label := fmt.Sprintf("d%d from d%d", opts.Target, opts.Source)

	if tui {
		return runMonitor(ctx, cmd.ErrOrStderr(), "Simulating "+label, func(ctx context.Context, hooks observability.SearchHooks) (*pipeline.Result, error) {
			opts.Hooks = hooks
			return runner.Execute(ctx, opts)
		})
	}

	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Searching "+label)
	opts.Hooks = spinnerHooks{spinner: spinner, label: "Searching " + label}
	spinner.Start()
	defer spinner.Stop()
	return runner.Execute(ctx, opts)
}
