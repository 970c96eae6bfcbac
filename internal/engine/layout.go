package engine

import (
	"fmt"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// LayoutCell aggregates everything stamped onto one low-res grid square.
type LayoutCell struct {
	Occupants   []int // placement indices
	IsShape     bool  // covered by some shape's low-res footprint
	IsBuffer    bool  // covered by some shape's clearance buffer only
	AnnealScore int   // 8 minus occupied neighbours for empty cells, 0 otherwise
}

func (c LayoutCell) Occupied() bool { return len(c.Occupants) > 0 }

// Layout is the composited grid, indexed [y][x] with row 0 at the floor.
type Layout [][]LayoutCell

func newLayout(height, width int) Layout {
	l := make(Layout, height)
	for y := range l {
		l[y] = make([]LayoutCell, width)
	}
	return l
}

func (l Layout) Height() int { return len(l) }

func (l Layout) Width() int {
	if len(l) == 0 {
		return 0
	}
	return len(l[0])
}

// InBounds reports whether (y, x) is a cell of the layout.
func (l Layout) InBounds(y, x int) bool {
	return y >= 0 && y < len(l) && x >= 0 && x < l.Width()
}

// Occupied reports whether (y, x) holds any shape or buffer. Out of bounds is empty.
func (l Layout) Occupied(y, x int) bool {
	return l.InBounds(y, x) && len(l[y][x].Occupants) > 0
}

// ShapeAt returns the first placement index stamped on (y, x), or -1.
func (l Layout) ShapeAt(y, x int) int {
	if !l.Occupied(y, x) {
		return -1
	}
	return l[y][x].Occupants[0]
}

// growColumns appends n empty columns on the right.
func (l Layout) growColumns(n int) Layout {
	for y := range l {
		l[y] = append(l[y], make([]LayoutCell, n)...)
	}
	return l
}

// growRow appends one empty row on top.
func (l Layout) growRow() Layout {
	return append(l, make([]LayoutCell, l.Width()))
}

// normalizePlacements shifts every placement so no coordinate is negative.
func normalizePlacements(placements []model.Placement) {
	minX, minY := 0, 0
	for _, p := range placements {
		if p.PosX < minX {
			minX = p.PosX
		}
		if p.PosY < minY {
			minY = p.PosY
		}
	}
	if minX == 0 && minY == 0 {
		return
	}
	for i := range placements {
		placements[i].PosX -= minX
		placements[i].PosY -= minY
	}
}

// MakeLayout rebuilds the layout from scratch from the current placements.
// The grid grows two columns or one row at a time until every buffer fits,
// then empty border rows and columns are trimmed and placements re-based.
func (s *Solution) MakeLayout() {
	normalizePlacements(s.Placements)

	layout := newLayout(0, 0)
	for i, p := range s.Placements {
		if !p.Enabled {
			continue
		}
		// Rows first: an empty layout has no row to widen
		for p.PosY+p.Height() > layout.Height() {
			layout = layout.growRow()
		}
		for p.PosX+p.Width() > layout.Width() {
			layout = layout.growColumns(2)
		}

		c := p.Shape.Clearance
		for by, row := range p.Shape.Buffer {
			for bx, filled := range row {
				if !filled {
					continue
				}
				cell := &layout[p.PosY+by][p.PosX+bx]
				cell.Occupants = append(cell.Occupants, i)
				if p.Shape.LowRes.At(by-c, bx-c) {
					cell.IsShape = true
				} else {
					cell.IsBuffer = true
				}
			}
		}
	}

	s.Layout = s.trimLayout(layout)
	for i := range s.Placements {
		p := &s.Placements[i]
		p.ID = fmt.Sprintf("%d-%d", p.PosY, p.PosX)
	}
}

// trimLayout crops empty border rows and columns on all four sides and shifts
// placements by the same amount.
func (s *Solution) trimLayout(l Layout) Layout {
	minY, maxY, minX, maxX := -1, -1, -1, -1
	for y := range l {
		for x := range l[y] {
			if !l[y][x].Occupied() {
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
		return newLayout(0, 0)
	}

	out := make(Layout, maxY-minY+1)
	for y := range out {
		out[y] = l[y+minY][minX : maxX+1]
	}
	if minX != 0 || minY != 0 {
		for i := range s.Placements {
			s.Placements[i].PosX -= minX
			s.Placements[i].PosY -= minY
		}
	}
	return out
}
