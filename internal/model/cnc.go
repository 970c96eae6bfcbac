package model

// CNCSettings configures nesting wall boards on sheet stock and the G-code
// that cuts them out.
type CNCSettings struct {
	SheetWidth  float64 `json:"sheet_width" toml:"sheet_width"`   // mm
	SheetHeight float64 `json:"sheet_height" toml:"sheet_height"` // mm
	BoardDepth  float64 `json:"board_depth" toml:"board_depth"`   // shelf depth, the short side of every board (mm)

	ToolDiameter float64 `json:"tool_diameter" toml:"tool_diameter"` // End mill diameter in mm
	FeedRate     float64 `json:"feed_rate" toml:"feed_rate"`         // Cutting feed rate mm/min
	PlungeRate   float64 `json:"plunge_rate" toml:"plunge_rate"`     // Plunge feed rate mm/min
	SpindleSpeed int     `json:"spindle_speed" toml:"spindle_speed"` // RPM
	SafeZ        float64 `json:"safe_z" toml:"safe_z"`               // Safe retract height mm
	PassDepth    float64 `json:"pass_depth" toml:"pass_depth"`       // Depth per pass mm

	// Holding tabs keep boards attached to the sheet during the final pass
	TabWidth    float64 `json:"tab_width" toml:"tab_width"`
	TabHeight   float64 `json:"tab_height" toml:"tab_height"`
	TabsPerSide int     `json:"tabs_per_side" toml:"tabs_per_side"`

	Profile string `json:"profile" toml:"profile"` // G-code post-processor name
}

// DefaultCNCSettings returns settings for a 2440x1220 sheet and a 6mm end mill.
func DefaultCNCSettings() CNCSettings {
	return CNCSettings{
		SheetWidth:   2440,
		SheetHeight:  1220,
		BoardDepth:   300,
		ToolDiameter: 6,
		FeedRate:     1500,
		PlungeRate:   500,
		SpindleSpeed: 18000,
		SafeZ:        5,
		PassDepth:    3,
		TabWidth:     8,
		TabHeight:    2,
		TabsPerSide:  0,
		Profile:      "Grbl",
	}
}

// GCodeProfile defines a post-processor configuration for a CNC controller.
type GCodeProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	StartCode    []string `json:"start_code"`    // Commands at start of file
	SpindleStart string   `json:"spindle_start"` // Spindle on command (e.g., "M3 S%d")
	SpindleStop  string   `json:"spindle_stop"`
	RapidMove    string   `json:"rapid_move"`
	FeedMove     string   `json:"feed_move"`
	EndCode      []string `json:"end_code"` // [SafeZ] is replaced by the retract height

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`
	DecimalPlaces int    `json:"decimal_places"`
}

// GCodeProfiles are the built-in post-processors.
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard G-code",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetGCodeProfile returns a profile by name, or Generic if not found.
func GetGCodeProfile(name string) GCodeProfile {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1]
}
