package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// DownscaleFactor is the number of high-res cells per low-res cell along each axis.
const DownscaleFactor = 4

// DefaultClearance is the number of low-res cells the buffer extends past the shape.
const DefaultClearance = 1

// ErrEmptyShape is returned when a shape grid has no filled cells.
var ErrEmptyShape = errors.New("shape has no filled cells")

// Grid is a 2D occupancy grid indexed [y][x]. Row 0 is the bottom (floor) row.
type Grid [][]bool

// NewGrid allocates an empty grid of the given size.
func NewGrid(height, width int) Grid {
	g := make(Grid, height)
	for y := range g {
		g[y] = make([]bool, width)
	}
	return g
}

// FilledGrid allocates a grid with every cell set.
func FilledGrid(height, width int) Grid {
	g := NewGrid(height, width)
	for y := range g {
		for x := range g[y] {
			g[y][x] = true
		}
	}
	return g
}

// ParseGrid builds a grid from text rows listed top row first.
// '#', 'X', 'x' and '1' mark filled cells; anything else is empty.
func ParseGrid(rows []string) Grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	g := NewGrid(len(rows), width)
	for i, r := range rows {
		y := len(rows) - 1 - i
		for x, ch := range []byte(r) {
			g[y][x] = ch == '#' || ch == 'X' || ch == 'x' || ch == '1'
		}
	}
	return g
}

func (g Grid) Height() int { return len(g) }

func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// At reports whether the cell is set. Out-of-range coordinates are empty.
func (g Grid) At(y, x int) bool {
	if y < 0 || y >= len(g) || x < 0 || x >= len(g[y]) {
		return false
	}
	return g[y][x]
}

// Count returns the number of filled cells.
func (g Grid) Count() int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	for y := range g {
		c[y] = append([]bool(nil), g[y]...)
	}
	return c
}

// Trim removes empty border rows and columns from all four sides.
func (g Grid) Trim() Grid {
	minY, maxY, minX, maxX := -1, -1, -1, -1
	for y, row := range g {
		for x, v := range row {
			if !v {
				continue
			}
			if minY < 0 || y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			if minX < 0 || x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
		}
	}
	if minY < 0 {
		return Grid{}
	}
	out := NewGrid(maxY-minY+1, maxX-minX+1)
	for y := minY; y <= maxY; y++ {
		copy(out[y-minY], g[y][minX:maxX+1])
	}
	return out
}

// Downscale shrinks the grid by factor; a cell is set when any cell of its block is.
func (g Grid) Downscale(factor int) Grid {
	if factor <= 1 {
		return g.Clone()
	}
	h := (g.Height() + factor - 1) / factor
	w := (g.Width() + factor - 1) / factor
	out := NewGrid(h, w)
	for y, row := range g {
		for x, v := range row {
			if v {
				out[y/factor][x/factor] = true
			}
		}
	}
	return out
}

// Dilate grows the grid by r cells on every side and sets every cell within
// r steps (8-connected) of a filled cell.
func (g Grid) Dilate(r int) Grid {
	out := NewGrid(g.Height()+2*r, g.Width()+2*r)
	for y, row := range g {
		for x, v := range row {
			if !v {
				continue
			}
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					out[y+r+dy][x+r+dx] = true
				}
			}
		}
	}
	return out
}

// String renders the grid top row first using '#' and '.'.
func (g Grid) String() string {
	var b strings.Builder
	for y := len(g) - 1; y >= 0; y-- {
		for _, v := range g[y] {
			if v {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if y > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Shape is an immutable footprint at three resolutions. Placements share it.
type Shape struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HighRes   Grid   `json:"high_res"`
	LowRes    Grid   `json:"low_res"`
	Buffer    Grid   `json:"buffer"`
	Clearance int    `json:"clearance"` // LowRes sits at (Clearance, Clearance) inside Buffer
}

// NewShape trims highRes, downscales it and inflates the result by clearance
// low-res cells to build the placement buffer.
func NewShape(title string, highRes Grid, clearance int) (*Shape, error) {
	if clearance < 0 {
		clearance = 0
	}
	trimmed := highRes.Trim()
	if trimmed.Count() == 0 {
		return nil, ErrEmptyShape
	}
	low := trimmed.Downscale(DownscaleFactor)
	return &Shape{
		ID:        uuid.New().String()[:8],
		Title:     title,
		HighRes:   trimmed,
		LowRes:    low,
		Buffer:    low.Dilate(clearance),
		Clearance: clearance,
	}, nil
}

// Clone returns a deep copy with the same ID.
func (s *Shape) Clone() *Shape {
	return &Shape{
		ID:        s.ID,
		Title:     s.Title,
		HighRes:   s.HighRes.Clone(),
		LowRes:    s.LowRes.Clone(),
		Buffer:    s.Buffer.Clone(),
		Clearance: s.Clearance,
	}
}
