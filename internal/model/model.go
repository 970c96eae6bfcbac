package model

import (
	"fmt"
	"strings"
)

// AspectRatio is the preferred width/height ratio of the packed layout.
type AspectRatio string

const (
	AspectSquare AspectRatio = "square" // width == height
	AspectWide   AspectRatio = "wide"   // twice as wide as tall
	AspectTall   AspectRatio = "tall"   // twice as tall as wide
)

// Target returns the width/height ratio the optimizer aims for.
func (a AspectRatio) Target() float64 {
	switch a {
	case AspectWide:
		return 2
	case AspectTall:
		return 0.5
	default:
		return 1
	}
}

// ParseAspectRatio converts user input into an AspectRatio. Empty input means square.
func ParseAspectRatio(s string) (AspectRatio, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "square":
		return AspectSquare, nil
	case "wide":
		return AspectWide, nil
	case "tall":
		return AspectTall, nil
	}
	return "", fmt.Errorf("unknown aspect ratio %q (want square, wide or tall)", s)
}

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min, max = o[0], o[0]
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Contains reports whether p lies inside the outline (even-odd rule).
func (o Outline) Contains(p Point2D) bool {
	inside := false
	for i, j := 0, len(o)-1; i < len(o); j, i = i, i+1 {
		a, b := o[i], o[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// Placement puts a shared shape at a position in the layout. PosX/PosY is the
// bottom-left corner of the shape's buffer grid, in low-res cells.
type Placement struct {
	Shape   *Shape `json:"-"`
	PosX    int    `json:"pos_x"`
	PosY    int    `json:"pos_y"`
	Enabled bool   `json:"enabled"`
	ID      string `json:"id"` // "<posY>-<posX>", assigned when the layout is built
}

func NewPlacement(s *Shape, x, y int) Placement {
	return Placement{Shape: s, PosX: x, PosY: y, Enabled: true}
}

// Width returns the buffer width in low-res cells.
func (p Placement) Width() int { return p.Shape.Buffer.Width() }

// Height returns the buffer height in low-res cells.
func (p Placement) Height() int { return p.Shape.Buffer.Height() }

// AnnealSettings holds the simulated annealing parameters.
type AnnealSettings struct {
	Temperature       float64 `json:"temperature" toml:"temperature"`
	CoolingRate       float64 `json:"cooling_rate" toml:"cooling_rate"`
	MinTemp           float64 `json:"min_temp" toml:"min_temp"`
	MaxIterations     int     `json:"max_iterations" toml:"max_iterations"`
	ReheatCounter     int     `json:"reheat_counter" toml:"reheat_counter"`
	ReheatingBoost    float64 `json:"reheating_boost" toml:"reheating_boost"`
	NumStarts         int     `json:"num_starts" toml:"num_starts"`
	MaxRefineAttempts int     `json:"max_refine_attempts" toml:"max_refine_attempts"`
}

// DefaultAnnealSettings returns the standard annealing schedule.
func DefaultAnnealSettings() AnnealSettings {
	return AnnealSettings{
		Temperature:       1000,
		CoolingRate:       0.98,
		MinTemp:           0.1,
		MaxIterations:     1000,
		ReheatCounter:     100,
		ReheatingBoost:    1.6,
		NumStarts:         10,
		MaxRefineAttempts: 8,
	}
}

// Settings holds everything needed to pack shapes and size the wall boards.
type Settings struct {
	Anneal       AnnealSettings `json:"anneal"`
	AspectRatio  AspectRatio    `json:"aspect_ratio"`
	ClusterLimit int            `json:"cluster_limit"` // Empty-cell score at which clustering is penalised
	Clearance    int            `json:"clearance"`     // Buffer around each shape, in low-res cells

	// Wall growth
	LookaheadDepth int `json:"lookahead_depth"`

	// Board output
	CellSize       float64 `json:"cell_size"`       // mm per low-res cell
	BoardThickness float64 `json:"board_thickness"` // mm
	StockLength    float64 `json:"stock_length"`    // mm per purchased board
	KerfWidth      float64 `json:"kerf_width"`      // mm lost per cut
	WastePercent   float64 `json:"waste_percent"`
	PricePerBoard  float64 `json:"price_per_board"`

	// Sheet nesting and toolpaths for CNC-cut boards
	CNC CNCSettings `json:"cnc"`
}

func DefaultSettings() Settings {
	return Settings{
		Anneal:         DefaultAnnealSettings(),
		AspectRatio:    AspectSquare,
		ClusterLimit:   5,
		Clearance:      DefaultClearance,
		LookaheadDepth: 4,
		CellSize:       25.0,
		BoardThickness: 6.0,
		StockLength:    2440.0,
		KerfWidth:      3.2,
		WastePercent:   10.0,
		PricePerBoard:  0,
		CNC:            DefaultCNCSettings(),
	}
}
