package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/model"
	"github.com/piwi3910/CubbyCut/internal/pipeline"
	"github.com/piwi3910/CubbyCut/internal/project"
)

// backupCommand creates the backup command.
func (c *CLI) backupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import config, custom profiles and stored solutions",
	}

	cmd.AddCommand(c.backupExportCommand())
	cmd.AddCommand(c.backupImportCommand())

	return cmd
}

func (c *CLI) backupExportCommand() *cobra.Command {
	var skipRuns bool

	cmd := &cobra.Command{
		Use:   "export <backup.json>",
		Short: "Write all application data to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			profiles, err := project.LoadCustomProfiles(c.profilesPath())
			if err != nil {
				return err
			}

			var solutions []*engine.Solution
			if !skipRuns {
				s, err := c.openStore(cfg)
				if err != nil {
					return err
				}
				defer s.Close()

				runs, err := s.ListRuns(cmd.Context(), 0)
				if err != nil {
					return err
				}
				for _, r := range runs {
					full, err := s.GetRun(cmd.Context(), r.ID)
					if err != nil {
						return err
					}
					solutions = append(solutions, full.Solution)
				}
			}

			if err := project.ExportAllData(args[0], cfg, profiles, solutions); err != nil {
				return err
			}
			c.printSuccess("Exported config, %d profiles and %d solutions", len(profiles), len(solutions))
			c.printFile(args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipRuns, "no-runs", false, "leave stored solutions out of the backup")
	return cmd
}

func (c *CLI) backupImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Restore config and profiles and add backed-up solutions to the run history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}

			if err := project.SaveAppConfig(c.configPath(), backup.Config); err != nil {
				return err
			}

			custom, err := project.LoadCustomProfiles(c.profilesPath())
			if err != nil {
				return err
			}
			for _, p := range backup.Profiles {
				custom = replaceProfile(custom, p)
			}
			if err := project.SaveCustomProfiles(c.profilesPath(), custom); err != nil {
				return err
			}

			if len(backup.Solutions) > 0 {
				settings := model.DefaultSettings()
				backup.Config.ApplyToSettings(&settings)

				var results []*pipeline.Result
				for _, sol := range backup.Solutions {
					res, err := pipeline.Grow(sol, pipeline.Options{Settings: settings, Logger: c.Logger})
					var stuck *cellular.StuckError
					if err != nil && !errors.As(err, &stuck) {
						return err
					}
					results = append(results, res)
				}
				if _, err := c.saveRuns(cmd.Context(), backup.Config, "imported", results...); err != nil {
					return err
				}
			}

			c.printSuccess("Imported backup from %s (version %s)", backup.CreatedAt, backup.Version)
			c.printDetail("%d profiles, %d solutions", len(backup.Profiles), len(backup.Solutions))
			return nil
		},
	}
}
