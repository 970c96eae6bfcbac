package cellular

import (
	"fmt"
	"sort"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// WallSegment is a unit wall between two neighbouring intersections.
type WallSegment struct {
	MinY, MinX int
	MaxY, MaxX int
	Strain     int
}

// Horizontal reports whether the segment runs along a row.
func (s WallSegment) Horizontal() bool { return s.MinY == s.MaxY }

// Key returns the strain-free form: "h-x-y" for a segment from (y, x) to
// (y, x+1), "v-x-y" for one from (y, x) to (y+1, x).
func (s WallSegment) Key() string {
	if s.Horizontal() {
		return hKey(s.MinX, s.MinY)
	}
	return vKey(s.MinX, s.MinY)
}

func hKey(x, y int) string { return fmt.Sprintf("h-%d-%d", x, y) }
func vKey(x, y int) string { return fmt.Sprintf("v-%d-%d", x, y) }

// CellPos is a layout cell coordinate.
type CellPos struct {
	Y, X int
}

// Cubby is the flood-filled storage area enclosed around one shape.
type Cubby struct {
	Index int    // placement index
	Title string // shape title
	Area  int    // number of layout cells
	Cells map[CellPos]bool
}

// Walls returns one segment per parent-to-child step, de-duplicated on
// (MinY, MinX, MaxY, MaxX, Strain) and sorted.
func (c *Cellular) Walls() []WallSegment {
	seen := make(map[WallSegment]bool)
	var out []WallSegment
	for _, cell := range c.cells {
		if cell.Parent < 0 {
			continue
		}
		p := c.cells[cell.Parent]
		if abs(p.Y-cell.Y)+abs(p.X-cell.X) != 1 {
			continue
		}
		seg := WallSegment{
			MinY:   min(p.Y, cell.Y),
			MinX:   min(p.X, cell.X),
			MaxY:   max(p.Y, cell.Y),
			MaxX:   max(p.X, cell.X),
			Strain: c.Strain(cell.ID),
		}
		if !seen[seg] {
			seen[seg] = true
			out = append(out, seg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MinY != b.MinY {
			return a.MinY < b.MinY
		}
		if a.MinX != b.MinX {
			return a.MinX < b.MinX
		}
		if a.MaxY != b.MaxY {
			return a.MaxY < b.MaxY
		}
		if a.MaxX != b.MaxX {
			return a.MaxX < b.MaxX
		}
		return a.Strain < b.Strain
	})
	return out
}

// WallKeys returns the set of simplified segment keys.
func (c *Cellular) WallKeys() map[string]bool {
	keys := make(map[string]bool)
	for _, s := range c.Walls() {
		keys[s.Key()] = true
	}
	return keys
}

// Keys returns the simplified segment keys in sorted order.
func (c *Cellular) Keys() []string {
	set := c.WallKeys()
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Runs merges collinear touching segments into maximal straight walls.
func (c *Cellular) Runs() []model.WallRun {
	rows := make(map[int][]int) // y -> x of horizontal units
	cols := make(map[int][]int) // x -> y of vertical units
	seen := make(map[string]bool)
	for _, s := range c.Walls() {
		if seen[s.Key()] {
			continue
		}
		seen[s.Key()] = true
		if s.Horizontal() {
			rows[s.MinY] = append(rows[s.MinY], s.MinX)
		} else {
			cols[s.MinX] = append(cols[s.MinX], s.MinY)
		}
	}

	var runs []model.WallRun
	collect := func(lines map[int][]int, horizontal bool) {
		keys := make([]int, 0, len(lines))
		for k := range lines {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			units := lines[k]
			sort.Ints(units)
			start, length := units[0], 1
			flush := func() {
				r := model.WallRun{Horizontal: horizontal, Length: length}
				if horizontal {
					r.X, r.Y = start, k
				} else {
					r.X, r.Y = k, start
				}
				runs = append(runs, r)
			}
			for _, u := range units[1:] {
				if u == start+length {
					length++
					continue
				}
				flush()
				start, length = u, 1
			}
			flush()
		}
	}
	collect(rows, true)
	collect(cols, false)
	return runs
}

// FloodFill measures the cubby of placement index by flooding the layout from
// the shape's bottom-left low-res cell through 4-neighbours not separated by a
// wall. Cells walled on all four sides are left out.
func (c *Cellular) FloodFill(index int) (int, map[CellPos]bool) {
	visited := make(map[CellPos]bool)
	if index < 0 || index >= len(c.sol.Placements) || !c.sol.Placements[index].Enabled {
		return 0, visited
	}
	p := c.sol.Placements[index]
	left, _ := overhangShift(p.Shape.LowRes[0])
	start := CellPos{Y: p.PosY + p.Shape.Clearance, X: p.PosX + p.Shape.Clearance + left}
	if !c.inLayout(start.Y, start.X) {
		return 0, visited
	}

	walls := c.WallKeys()
	enclosed := func(y, x int) bool {
		return walls[vKey(x, y)] && walls[vKey(x+1, y)] && walls[hKey(x, y)] && walls[hKey(x, y+1)]
	}

	queue := []CellPos{start}
	seen := map[CellPos]bool{start: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if enclosed(cur.Y, cur.X) {
			continue
		}
		visited[cur] = true

		steps := []struct {
			next    CellPos
			blocked bool
		}{
			{CellPos{cur.Y, cur.X + 1}, walls[vKey(cur.X+1, cur.Y)]},
			{CellPos{cur.Y, cur.X - 1}, walls[vKey(cur.X, cur.Y)]},
			{CellPos{cur.Y + 1, cur.X}, walls[hKey(cur.X, cur.Y+1)]},
			{CellPos{cur.Y - 1, cur.X}, walls[hKey(cur.X, cur.Y)]},
		}
		for _, s := range steps {
			if s.blocked || seen[s.next] || !c.inLayout(s.next.Y, s.next.X) {
				continue
			}
			seen[s.next] = true
			queue = append(queue, s.next)
		}
	}
	return len(visited), visited
}

// CalculateAllCubbyAreas flood-fills every enabled shape's cubby.
func (c *Cellular) CalculateAllCubbyAreas() map[int]Cubby {
	out := make(map[int]Cubby)
	for i, p := range c.sol.Placements {
		if !p.Enabled {
			continue
		}
		area, cells := c.FloodFill(i)
		out[i] = Cubby{Index: i, Title: p.Shape.Title, Area: area, Cells: cells}
	}
	return out
}

// Cubbies returns CalculateAllCubbyAreas sorted by placement index.
func (c *Cellular) Cubbies() []Cubby {
	all := c.CalculateAllCubbyAreas()
	out := make([]Cubby, 0, len(all))
	for _, cb := range all {
		out = append(out, cb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
