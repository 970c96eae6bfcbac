package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/export"
	"github.com/piwi3910/CubbyCut/internal/pipeline"
	"github.com/piwi3910/CubbyCut/internal/project"
)

type growOptions struct {
	settingsOptions
	outputOptions
	baseline bool
	title    string
}

// growCommand creates the "grow" command.
func (c *CLI) growCommand() *cobra.Command {
	var opts growOptions

	cmd := &cobra.Command{
		Use:   "grow <solution.json>",
		Short: "Grow cubby walls around a saved solution",
		Long: `Grow loads a solution written by optimize and grows the cubby walls again,
for example with a different lookahead depth or cell size, or with the
simple baseline policy for comparison.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGrow(args[0], opts)
		},
	}

	opts.settingsOptions.register(cmd)
	opts.outputOptions.register(cmd)
	cmd.Flags().BoolVar(&opts.baseline, "baseline", false, "grow with the baseline policy instead of the lookahead")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "layout title (default from the output name)")

	return cmd
}

func (c *CLI) runGrow(path string, opts growOptions) error {
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

	sol, err := project.LoadSolution(path)
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		name = baseName(baseName(path)) // foo.solution.json -> foo
	}
	title := opts.title
	if title == "" {
		title = name
	}

	popts := pipeline.Options{Settings: settings, Logger: c.Logger}
	prog := newProgress(c.Logger)
	var (
		res     *pipeline.Result
		growErr error
	)
	if opts.baseline {
		var br cellular.BaselineResult
		res, br = pipeline.GrowBaseline(sol, popts)
		if br.Capped {
			c.printWarning("Baseline stopped after %d ticks", br.Ticks)
		}
		if br.Stuck > 0 {
			c.printDetail("%d fronts stopped without meeting a wall", br.Stuck)
		}
	} else {
		res, growErr = pipeline.Grow(sol, popts)
		var stuck *cellular.StuckError
		if growErr != nil && !errors.As(growErr, &stuck) {
			return growErr
		}
	}
	prog.done(fmt.Sprintf("Grew walls for %d shapes", len(sol.Placements)))

	c.printTitle(title)
	c.printResult(res)

	if res.Stuck != nil {
		return growErr
	}
	written, err := c.writeOutputs(export.NewPlan(title, res.Cellular, settings), opts.dir, name, formats)
	for _, p := range written {
		c.printFile(p)
	}
	return err
}
