package model

import (
	"strings"

	"github.com/google/uuid"
)

// ToolProfile is a reusable end mill configuration.
type ToolProfile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ToolDiameter float64 `json:"tool_diameter"`
	FeedRate     float64 `json:"feed_rate"`
	PlungeRate   float64 `json:"plunge_rate"`
	SpindleSpeed int     `json:"spindle_speed"`
	PassDepth    float64 `json:"pass_depth"`
}

func NewToolProfile(name string, diameter, feedRate, plungeRate float64, spindleSpeed int, passDepth float64) ToolProfile {
	return ToolProfile{
		ID:           uuid.New().String()[:8],
		Name:         name,
		ToolDiameter: diameter,
		FeedRate:     feedRate,
		PlungeRate:   plungeRate,
		SpindleSpeed: spindleSpeed,
		PassDepth:    passDepth,
	}
}

// ApplyTo copies the tool's cutting parameters into s.
func (tp ToolProfile) ApplyTo(s *CNCSettings) {
	s.ToolDiameter = tp.ToolDiameter
	s.FeedRate = tp.FeedRate
	s.PlungeRate = tp.PlungeRate
	s.SpindleSpeed = tp.SpindleSpeed
	s.PassDepth = tp.PassDepth
}

// SheetPreset is a reusable sheet stock size for cutting wall boards.
type SheetPreset struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
	Material  string  `json:"material"`
}

func NewSheetPreset(name string, width, height, thickness float64, material string) SheetPreset {
	return SheetPreset{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Width:     width,
		Height:    height,
		Thickness: thickness,
		Material:  material,
	}
}

// ApplyTo sets the sheet size and board thickness on s.
func (sp SheetPreset) ApplyTo(s *Settings) {
	s.CNC.SheetWidth = sp.Width
	s.CNC.SheetHeight = sp.Height
	if sp.Thickness > 0 {
		s.BoardThickness = sp.Thickness
	}
}

// Inventory holds the known tools and sheet sizes.
type Inventory struct {
	Tools  []ToolProfile `json:"tools"`
	Sheets []SheetPreset `json:"sheets"`
}

// DefaultInventory returns common end mills and sheet goods.
func DefaultInventory() Inventory {
	return Inventory{
		Tools: []ToolProfile{
			NewToolProfile("6mm End Mill", 6.0, 1500, 500, 18000, 6.0),
			NewToolProfile("3mm End Mill", 3.0, 1000, 300, 20000, 3.0),
			NewToolProfile("1/4\" End Mill (6.35mm)", 6.35, 1500, 500, 18000, 6.0),
			NewToolProfile("1/8\" End Mill (3.175mm)", 3.175, 800, 250, 22000, 3.0),
		},
		Sheets: []SheetPreset{
			NewSheetPreset("Plywood 2440x1220 (8'x4')", 2440, 1220, 18, "Plywood"),
			NewSheetPreset("MDF 2440x1220 (8'x4')", 2440, 1220, 18, "MDF"),
			NewSheetPreset("Plywood 1220x610 (4'x2')", 1220, 610, 12, "Plywood"),
			NewSheetPreset("MDF 1220x610 (4'x2')", 1220, 610, 6, "MDF"),
		},
	}
}

// FindTool returns the tool whose name starts with name, ignoring case.
// An exact match wins over a prefix match.
func (inv *Inventory) FindTool(name string) *ToolProfile {
	i := findByName(len(inv.Tools), func(i int) string { return inv.Tools[i].Name }, name)
	if i < 0 {
		return nil
	}
	return &inv.Tools[i]
}

// FindSheet returns the sheet preset whose name starts with name, ignoring case.
func (inv *Inventory) FindSheet(name string) *SheetPreset {
	i := findByName(len(inv.Sheets), func(i int) string { return inv.Sheets[i].Name }, name)
	if i < 0 {
		return nil
	}
	return &inv.Sheets[i]
}

func (inv *Inventory) ToolNames() []string {
	names := make([]string, len(inv.Tools))
	for i, t := range inv.Tools {
		names[i] = t.Name
	}
	return names
}

func (inv *Inventory) SheetNames() []string {
	names := make([]string, len(inv.Sheets))
	for i, s := range inv.Sheets {
		names[i] = s.Name
	}
	return names
}

func findByName(n int, nameAt func(int) string, name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return -1
	}
	prefix := -1
	for i := 0; i < n; i++ {
		candidate := strings.ToLower(nameAt(i))
		if candidate == name {
			return i
		}
		if prefix < 0 && strings.HasPrefix(candidate, name) {
			prefix = i
		}
	}
	return prefix
}
