package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/export"
	"github.com/piwi3910/CubbyCut/internal/pipeline"
)

type optimizeOptions struct {
	settingsOptions
	outputOptions
	seed  int64
	title string
	save  bool
}

// optimizeCommand creates the "optimize" command.
func (c *CLI) optimizeCommand() *cobra.Command {
	var opts optimizeOptions

	cmd := &cobra.Command{
		Use:   "optimize <shapes>...",
		Short: "Pack shapes into a layout and grow cubby walls around them",
		Long: `Optimize imports shapes from text grids, CSV, Excel workbooks or DXF outlines,
packs them with simulated annealing and grows the cubby walls.

The solution is written as JSON next to any other requested formats. A run
whose wall growth gets stuck still writes its solution so it can be inspected,
then exits with an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOptimize(cmd, args, opts)
		},
	}

	opts.settingsOptions.register(cmd)
	opts.outputOptions.register(cmd)
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "layout title (default from the output name)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the run in the run history")

	return cmd
}

func (c *CLI) runOptimize(cmd *cobra.Command, args []string, opts optimizeOptions) error {
	ctx := cmd.Context()

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
	title := opts.title
	if title == "" {
		title = name
	}

	prog := newProgress(c.Logger)
	res, runErr := pipeline.Run(ctx, shapes, pipeline.Options{
		Settings: settings,
		Seed:     opts.seed,
		Logger:   c.Logger,
		Progress: annealReporter(c.Logger),
	})
	var stuck *cellular.StuckError
	if runErr != nil && !errors.As(runErr, &stuck) {
		return runErr
	}
	prog.done(fmt.Sprintf("Packed %d shapes", len(shapes)))

	c.printTitle(title)
	c.printResult(res)

	if stuck != nil {
		// Only the solution is meaningful for a stuck run.
		formats = []string{FormatJSON}
	}
	written, werr := c.writeOutputs(export.NewPlan(title, res.Cellular, settings), opts.dir, name, formats)
	for _, p := range written {
		c.printFile(p)
	}
	if werr != nil {
		return werr
	}

	if opts.save {
		ids, err := c.saveRuns(ctx, cfg, title, res)
		if err != nil {
			return err
		}
		c.printSuccess("Saved run %s", ids[0])
	}
	return runErr
}
