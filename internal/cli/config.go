package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/model"
	"github.com/piwi3910/CubbyCut/internal/project"
)

// configCommand creates the configuration command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the application config",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long:  `Init writes the default settings to the config file. A .toml path is written as TOML, anything else as JSON.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := project.SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
				return err
			}
			c.printSuccess("Wrote default config")
			c.printFile(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			data, err := project.EncodeAppConfig(cfg, asTOML)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, strings.TrimRight(string(data), "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print as TOML instead of JSON")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.out, c.configPath())
			return nil
		},
	}
}

// profilesCommand creates the anneal profile command.
func (c *CLI) profilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage anneal profiles",
	}

	cmd.AddCommand(c.profilesListCommand())
	cmd.AddCommand(c.profilesImportCommand())
	cmd.AddCommand(c.profilesDeleteCommand())

	return cmd
}

func (c *CLI) profilesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom anneal profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := project.AllProfiles(c.profilesPath())
			if err != nil {
				return err
			}
			for _, p := range profiles {
				kind := "custom"
				if p.IsBuiltIn {
					kind = "built-in"
				}
				c.printInfo("%-12s %-9s %s", p.Name, kind, p.Description)
				c.printDetail("%d starts, %d iterations, cooling %.3f, %d refine attempts",
					p.Anneal.NumStarts, p.Anneal.MaxIterations, p.Anneal.CoolingRate, p.Anneal.MaxRefineAttempts)
			}
			return nil
		},
	}
}

func (c *CLI) profilesImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <profile.json>",
		Short: "Add or replace a custom anneal profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportProfile(args[0])
			if err != nil {
				return err
			}
			custom, err := project.LoadCustomProfiles(c.profilesPath())
			if err != nil {
				return err
			}
			custom = replaceProfile(custom, p)
			if err := project.SaveCustomProfiles(c.profilesPath(), custom); err != nil {
				return err
			}
			c.printSuccess("Imported profile %q", p.Name)
			return nil
		},
	}
}

func (c *CLI) profilesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a custom anneal profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := project.LoadCustomProfiles(c.profilesPath())
			if err != nil {
				return err
			}
			kept := custom[:0]
			for _, p := range custom {
				if !strings.EqualFold(p.Name, args[0]) {
					kept = append(kept, p)
				}
			}
			if len(kept) == len(custom) {
				return fmt.Errorf("no custom profile named %q", args[0])
			}
			if err := project.SaveCustomProfiles(c.profilesPath(), kept); err != nil {
				return err
			}
			c.printSuccess("Deleted profile %q", args[0])
			return nil
		},
	}
}

// replaceProfile swaps in p for a custom profile of the same name, or appends it.
func replaceProfile(profiles []model.AnnealProfile, p model.AnnealProfile) []model.AnnealProfile {
	p.IsBuiltIn = false
	for i := range profiles {
		if strings.EqualFold(profiles[i].Name, p.Name) {
			profiles[i] = p
			return profiles
		}
	}
	return append(profiles, p)
}

// inventoryCommand creates the tool and sheet inventory command.
func (c *CLI) inventoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Manage the end mills and sheet stock used for G-code",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tools and sheet presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadInventory(c.inventoryPath())
			if err != nil {
				return err
			}
			c.printTitle("Tools")
			for _, t := range inv.Tools {
				c.printInfo("%s", t.Name)
				c.printDetail("%.3gmm, feed %.0f, plunge %.0f, %d rpm, %.1fmm passes",
					t.ToolDiameter, t.FeedRate, t.PlungeRate, t.SpindleSpeed, t.PassDepth)
			}
			c.printTitle("Sheets")
			for _, s := range inv.Sheets {
				c.printInfo("%s", s.Name)
				c.printDetail("%.0f x %.0f x %.0f mm %s", s.Width, s.Height, s.Thickness, s.Material)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <inventory.json>",
		Short: "Merge tools and sheets into the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadInventory(c.inventoryPath())
			if err != nil {
				return err
			}
			inv, err = project.ImportInventory(args[0], inv)
			if err != nil {
				return fmt.Errorf("import inventory: %w", err)
			}
			if err := project.SaveInventory(c.inventoryPath(), inv); err != nil {
				return err
			}
			c.printSuccess("Inventory has %d tools and %d sheets", len(inv.Tools), len(inv.Sheets))
			return nil
		},
	})

	return cmd
}
