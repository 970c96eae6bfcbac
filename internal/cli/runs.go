package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/export"
	"github.com/piwi3910/CubbyCut/internal/pipeline"
)

// runsCommand creates the run history command.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage the run history",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())
	cmd.AddCommand(c.runsExportCommand())

	return cmd
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s, err := c.openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				c.printInfo("No stored runs")
				return nil
			}
			for _, r := range runs {
				status := "valid"
				switch {
				case r.Stuck:
					status = "stuck"
				case !r.Valid:
					status = "invalid"
				}
				c.printInfo("%s  %s  %-20s seed %-4d score %-6d %-7s %d shapes  %.0f mm",
					shortID(r.ID), r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Title,
					r.Seed, r.Score, status, r.ShapeCount, r.WallLength)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum runs to list (0 = all)")
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s, err := c.openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printTitle(run.Title)
			c.printKeyValue("ID", run.ID)
			c.printKeyValue("Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			c.printKeyValue("Seed", fmt.Sprintf("%d", run.Seed))
			c.printKeyValue("Score", fmt.Sprintf("%d", run.Score))
			c.printKeyValue("Valid", fmt.Sprintf("%t", run.Valid))
			c.printKeyValue("Stuck", fmt.Sprintf("%t", run.Stuck))
			c.printKeyValue("Layout", fmt.Sprintf("%d x %d cells", run.Solution.Layout.Width(), run.Solution.Layout.Height()))
			c.printKeyValue("Walls", fmt.Sprintf("%.0f mm", run.WallLength))
			for _, cb := range run.Cubbies {
				c.printDetail("%-20s %d cells", cb.Title, cb.Area)
			}
			return nil
		},
	}
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s, err := c.openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.printSuccess("Deleted run %s", args[0])
			return nil
		},
	}
}

// runsExportCommand regrows a stored solution and writes it out.
func (c *CLI) runsExportCommand() *cobra.Command {
	var (
		settingsOpts settingsOptions
		outputOpts   outputOptions
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a stored run in the requested formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(outputOpts.formats)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			settings, err := c.settings(cfg, settingsOpts)
			if err != nil {
				return err
			}
			s, err := c.openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.Grow(run.Solution, pipeline.Options{Settings: settings, Seed: run.Seed, Logger: c.Logger})
			if err != nil {
				return err
			}

			name := outputOpts.name
			if name == "" {
				name = shortID(run.ID)
			}
			written, err := c.writeOutputs(export.NewPlan(run.Title, res.Cellular, settings), outputOpts.dir, name, formats)
			for _, p := range written {
				c.printFile(p)
			}
			return err
		},
	}
	settingsOpts.register(cmd)
	outputOpts.register(cmd)
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
