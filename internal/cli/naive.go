package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diceplan/pkg/pipeline"
)

func (c *CLI) naiveCommand() *cobra.Command {
	var (
		source, target int
		format         string
	)

	cmd := &cobra.Command{
		Use:   "naive",
		Short: "Print the naive plan and its cost",
		Long: `Print the naive plan: throw until at least T units are in play, map T of
them to the result and start over with the rest. Its cost is an upper
bound on the optimal cost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("source") {
				source = cfg.Search.Source
			}
			if !cmd.Flags().Changed("target") {
				target = cfg.Search.Target
			}
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}

			res, err := pipeline.NewRunner(nil, nil, c.Logger).Naive(source, target)
			if err != nil {
				return err
			}

			data, err := pipeline.RenderPlan(cmd.Context(), res.Plan, format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(data); err != nil {
				return err
			}
			if format == pipeline.FormatText {
				fmt.Fprintf(out, "Cost = %g\n", res.Cost)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&source, "source", "s", pipeline.DefaultSource, "sides of the die that is thrown")
	cmd.Flags().IntVarP(&target, "target", "t", pipeline.DefaultTarget, "sides of the die to simulate")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatText, "output format: text, json, dot, svg, png, pdf")

	return cmd
}
