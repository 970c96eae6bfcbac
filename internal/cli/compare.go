package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/pipeline"
)

type compareOptions struct {
	settingsOptions
	seed int64
}

// compareCommand creates the "compare" command.
func (c *CLI) compareCommand() *cobra.Command {
	var opts compareOptions

	cmd := &cobra.Command{
		Use:   "compare <shapes>...",
		Short: "Compare anneal scenarios and wall growth policies",
		Long: `Compare anneals the shapes under what-if variations of the current settings
(other aspect preferences, a stricter cluster limit, fewer starts), then grows
walls on every resulting layout with both the lookahead and the baseline
policy and reports wall length and cubby coverage for each.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd, args, opts)
		},
	}

	opts.settingsOptions.register(cmd)
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed")

	return cmd
}

func (c *CLI) runCompare(cmd *cobra.Command, args []string, opts compareOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	settings, err := c.settings(cfg, opts.settingsOptions)
	if err != nil {
		return err
	}
	shapes, err := c.importShapes(args, settings)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	results, err := pipeline.CompareScenarios(cmd.Context(), shapes, pipeline.Options{
		Settings: settings,
		Seed:     opts.seed,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compared %d scenarios", len(results)))

	c.printTitle("Scenarios")
	solutions := make([]*engine.Solution, 0, len(results))
	for _, r := range results {
		solutions = append(solutions, r.Solution)
		c.printInfo("%-22s score %-6d valid %-5t %dx%d  fill %.1f%%",
			r.Scenario.Name, r.Score, r.Valid, r.Width, r.Height, r.FillPercent)
	}

	c.printTitle("Wall growth")
	stats := pipeline.CompareGrowth(solutions, cellular.Config{LookaheadDepth: settings.LookaheadDepth})
	for _, s := range stats {
		c.printInfo("%-10s %d/%d complete", s.Policy, s.Runs-s.Stuck, s.Runs)
		c.printDetail("wall length %.1f ± %.1f cells", s.WallLength.Mean, s.WallLength.StdDev)
		c.printDetail("coverage    %.1f ± %.1f %%", s.Coverage.Mean, s.Coverage.StdDev)
		c.printDetail("generations %.1f ± %.1f", s.Generations.Mean, s.Generations.StdDev)
	}
	return nil
}
