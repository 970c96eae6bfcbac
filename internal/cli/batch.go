package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/export"
	"github.com/piwi3910/CubbyCut/internal/pipeline"
)

type batchOptions struct {
	settingsOptions
	outputOptions
	seeds     int
	firstSeed int64
	workers   int
	save      bool
}

// batchCommand creates the "batch" command.
func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <shapes>...",
		Short: "Run the same shapes with several seeds and keep the best layout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd, args, opts)
		},
	}

	opts.settingsOptions.register(cmd)
	opts.outputOptions.register(cmd)
	cmd.Flags().IntVar(&opts.seeds, "seeds", 8, "number of seeds to try")
	cmd.Flags().Int64Var(&opts.firstSeed, "first-seed", 1, "first seed; the others follow consecutively")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent runs (default number of CPUs)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store every finished run in the run history")

	return cmd
}

func (c *CLI) runBatch(cmd *cobra.Command, args []string, opts batchOptions) error {
	ctx := cmd.Context()
	if opts.seeds < 1 {
		return fmt.Errorf("--seeds must be at least 1")
	}
	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
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
	c.rememberInputs(cfg, args)

	name := opts.name
	if name == "" {
		name = baseName(args[0])
	}

	prog := newProgress(c.Logger)
	results, err := pipeline.RunBatch(ctx, shapes, pipeline.BatchOptions{
		Options: pipeline.Options{Settings: settings, Logger: c.Logger},
		Seeds:   pipeline.SeedRange(opts.firstSeed, opts.seeds),
		Workers: opts.workers,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Ran %d seeds", len(results)))

	c.printTitle("%s: %d seeds", name, len(results))
	var finished []*pipeline.Result
	for _, r := range results {
		if r.Err != nil {
			c.printError("seed %-4d %v", r.Seed, r.Err)
			continue
		}
		finished = append(finished, r.Result)
		c.printInfo("seed %-4d score %-6d valid %-5t walls %.0f mm  coverage %.1f%%",
			r.Seed, r.Result.Solution.Score, r.Result.Solution.Valid, r.Result.WallLength(), r.Result.Coverage())
	}

	best := pipeline.Best(results)
	if best == nil {
		return fmt.Errorf("no seed produced a complete layout")
	}
	c.printSuccess("Best seed %d", best.Seed)
	c.printResult(best.Result)

	written, err := c.writeOutputs(export.NewPlan(name, best.Result.Cellular, settings), opts.dir, name, formats)
	for _, p := range written {
		c.printFile(p)
	}
	if err != nil {
		return err
	}

	if opts.save {
		ids, err := c.saveRuns(ctx, cfg, name, finished...)
		if err != nil {
			return err
		}
		c.printSuccess("Saved %d runs", len(ids))
	}
	return nil
}
