package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Annealing defaults applied to every run
	DefaultAnneal       AnnealSettings `json:"default_anneal" toml:"default_anneal"`
	DefaultAspectRatio  AspectRatio    `json:"default_aspect_ratio" toml:"default_aspect_ratio"`
	DefaultClusterLimit int            `json:"default_cluster_limit" toml:"default_cluster_limit"`
	DefaultClearance    int            `json:"default_clearance" toml:"default_clearance"`
	DefaultLookahead    int            `json:"default_lookahead" toml:"default_lookahead"`

	// Board defaults
	DefaultCellSize       float64 `json:"default_cell_size" toml:"default_cell_size"`
	DefaultBoardThickness float64 `json:"default_board_thickness" toml:"default_board_thickness"`
	DefaultStockLength    float64 `json:"default_stock_length" toml:"default_stock_length"`
	DefaultKerfWidth      float64 `json:"default_kerf_width" toml:"default_kerf_width"`
	DefaultWastePercent   float64 `json:"default_waste_percent" toml:"default_waste_percent"`
	DefaultPricePerBoard  float64 `json:"default_price_per_board" toml:"default_price_per_board"`

	// CNC machining defaults
	CNC CNCSettings `json:"cnc" toml:"cnc"`

	// Application preferences
	DatabasePath string   `json:"database_path" toml:"database_path"` // empty = ~/.cubbycut/runs.db
	RecentFiles  []string `json:"recent_files" toml:"recent_files"`
}

// DefaultAppConfig returns an AppConfig populated with the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultAnneal:         defaults.Anneal,
		DefaultAspectRatio:    defaults.AspectRatio,
		DefaultClusterLimit:   defaults.ClusterLimit,
		DefaultClearance:      defaults.Clearance,
		DefaultLookahead:      defaults.LookaheadDepth,
		DefaultCellSize:       defaults.CellSize,
		DefaultBoardThickness: defaults.BoardThickness,
		DefaultStockLength:    defaults.StockLength,
		DefaultKerfWidth:      defaults.KerfWidth,
		DefaultWastePercent:   defaults.WastePercent,
		DefaultPricePerBoard:  defaults.PricePerBoard,
		CNC:                   defaults.CNC,
		RecentFiles:           []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Anneal = c.DefaultAnneal
	s.AspectRatio = c.DefaultAspectRatio
	s.ClusterLimit = c.DefaultClusterLimit
	s.Clearance = c.DefaultClearance
	s.LookaheadDepth = c.DefaultLookahead
	s.CellSize = c.DefaultCellSize
	s.BoardThickness = c.DefaultBoardThickness
	s.StockLength = c.DefaultStockLength
	s.KerfWidth = c.DefaultKerfWidth
	s.WastePercent = c.DefaultWastePercent
	s.PricePerBoard = c.DefaultPricePerBoard
	s.CNC = c.CNC
}

// AddRecentFile moves path to the front of RecentFiles, keeping at most max entries.
func (c *AppConfig) AddRecentFile(path string, max int) {
	files := []string{path}
	for _, f := range c.RecentFiles {
		if f != path {
			files = append(files, f)
		}
	}
	if max > 0 && len(files) > max {
		files = files[:max]
	}
	c.RecentFiles = files
}
