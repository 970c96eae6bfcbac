// Package cli implements the cubbycut command-line interface.
//
// Commands import shape outlines, pack them into a layout, grow cubby walls
// around it and write the result as solution JSON, DXF, PDF, QR label sheets
// and Excel cut lists. Runs can be kept in a SQLite history.
//
// All commands share --config (JSON or TOML application config) and
// --verbose (debug logging through charmbracelet/log).
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/model"
	"github.com/piwi3910/CubbyCut/internal/project"
	"github.com/piwi3910/CubbyCut/internal/store"
)

const appName = "cubbycut"

// maxRecentFiles bounds AppConfig.RecentFiles.
const maxRecentFiles = 10

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string // empty = project.DefaultConfigPath()
	out        io.Writer
}

// New creates a CLI whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "CubbyCut packs objects into shelves and designs the cubby walls around them",
		Long:         `CubbyCut packs object outlines into a compact shelf layout with simulated annealing, then grows the walls that separate them into cubbies and turns those walls into a board cut list.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.out = cmd.OutOrStdout()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (.json or .toml, default ~/.cubbycut/config.json)")

	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.growCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.profilesCommand())
	root.AddCommand(c.inventoryCommand())
	root.AddCommand(c.backupCommand())

	return root
}

// =============================================================================
// Paths
// =============================================================================

func (c *CLI) configPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return project.DefaultConfigPath()
}

// profilesPath keeps custom profiles next to the config file.
func (c *CLI) profilesPath() string {
	return filepath.Join(filepath.Dir(c.configPath()), "profiles.json")
}

func (c *CLI) inventoryPath() string {
	return filepath.Join(filepath.Dir(c.configPath()), "inventory.json")
}

func (c *CLI) databasePath(cfg model.AppConfig) string {
	if cfg.DatabasePath != "" {
		return cfg.DatabasePath
	}
	return filepath.Join(filepath.Dir(c.configPath()), "runs.db")
}

// =============================================================================
// Config & Settings
// =============================================================================

func (c *CLI) loadConfig() (model.AppConfig, error) {
	cfg, err := project.LoadAppConfig(c.configPath())
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// settingsOptions are the per-command overrides of the configured defaults.
type settingsOptions struct {
	profile   string
	aspect    string
	clearance int
	lookahead int
	cellSize  float64
	post      string
	tool      string
	sheet     string
}

func (o *settingsOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.profile, "profile", "p", "", "anneal profile (quick, balanced, thorough or a custom name)")
	cmd.Flags().StringVar(&o.aspect, "aspect", "", "preferred layout shape: square, wide or tall")
	cmd.Flags().IntVar(&o.clearance, "clearance", -1, "buffer cells around each shape")
	cmd.Flags().IntVar(&o.lookahead, "lookahead", 0, "wall growth lookahead depth")
	cmd.Flags().Float64Var(&o.cellSize, "cell-size", 0, "mm per layout cell")
	cmd.Flags().StringVar(&o.tool, "tool", "", "end mill from the tool inventory, matched by name prefix")
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "sheet stock from the inventory, matched by name prefix")
	cmd.Flags().StringVar(&o.post, "post", "", "G-code post-processor: "+strings.Join(gcodeProfileNames(), ", "))
}

func gcodeProfileNames() []string {
	names := make([]string, len(model.GCodeProfiles))
	for i, p := range model.GCodeProfiles {
		names[i] = p.Name
	}
	return names
}

// settings applies the config defaults, then the profile, then explicit flags.
func (c *CLI) settings(cfg model.AppConfig, o settingsOptions) (model.Settings, error) {
	s := model.DefaultSettings()
	cfg.ApplyToSettings(&s)

	if o.profile != "" {
		profiles, err := project.AllProfiles(c.profilesPath())
		if err != nil {
			return s, fmt.Errorf("load profiles: %w", err)
		}
		p, ok := model.FindProfile(profiles, o.profile)
		if !ok {
			return s, fmt.Errorf("unknown profile %q", o.profile)
		}
		s.Anneal = p.Anneal
	}
	if o.aspect != "" {
		a, err := model.ParseAspectRatio(o.aspect)
		if err != nil {
			return s, err
		}
		s.AspectRatio = a
	}
	if o.clearance >= 0 {
		s.Clearance = o.clearance
	}
	if o.lookahead > 0 {
		s.LookaheadDepth = o.lookahead
	}
	if o.cellSize > 0 {
		s.CellSize = o.cellSize
	}
	inv, err := project.LoadInventory(c.inventoryPath())
	if err != nil {
		return s, fmt.Errorf("load inventory: %w", err)
	}
	if o.tool != "" {
		tp := inv.FindTool(o.tool)
		if tp == nil {
			return s, fmt.Errorf("unknown tool %q (have %s)", o.tool, strings.Join(inv.ToolNames(), ", "))
		}
		tp.ApplyTo(&s.CNC)
	}
	if o.sheet != "" {
		sp := inv.FindSheet(o.sheet)
		if sp == nil {
			return s, fmt.Errorf("unknown sheet %q (have %s)", o.sheet, strings.Join(inv.SheetNames(), ", "))
		}
		sp.ApplyTo(&s)
	}
	if o.post != "" {
		found := false
		for _, name := range gcodeProfileNames() {
			if strings.EqualFold(name, o.post) {
				s.CNC.Profile = name
				found = true
			}
		}
		if !found {
			return s, fmt.Errorf("unknown post-processor %q", o.post)
		}
	}
	return s, nil
}

// rememberInputs records paths in the recent files list. Failures only warn.
func (c *CLI) rememberInputs(cfg model.AppConfig, paths []string) {
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		cfg.AddRecentFile(p, maxRecentFiles)
	}
	if err := project.SaveAppConfig(c.configPath(), cfg); err != nil {
		c.Logger.Warn("could not update recent files", "err", err)
	}
}

func (c *CLI) openStore(cfg model.AppConfig) (*store.Store, error) {
	path := c.databasePath(cfg)
	c.Logger.Debug("opening run history", "path", path)
	s, err := store.Open(path, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	return s, nil
}
