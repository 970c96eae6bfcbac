// Package cellular grows partition walls between the shapes of a packed
// layout.
//
// Every shape seeds two wall fronts at the corners of its bottom edge. Fronts
// live on grid intersections and advance one unit per generation to the left,
// upwards or to the right, choosing their direction with a bounded lookahead
// over a terrain cost field. Fronts belonging to the same shape form a strain;
// strains merge when their fronts meet, and a front dies when it runs into a
// wall of another strain or the perimeter. Growth ends when no front is left
// alive. The parent link of every cell is kept so the finished wall network
// can be read back as unit segments and flood-filled into per-shape cubbies.
package cellular

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/CubbyCut/internal/engine"
)

// DefaultLookaheadDepth is the recursion depth of the opportunity score.
const DefaultLookaheadDepth = 4

// Direction is a unit move between neighbouring intersections.
type Direction int

const (
	Left Direction = iota
	Up
	Right
	Down
)

// offsets holds (dy, dx) per Direction.
var offsets = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	default:
		return "down"
	}
}

// Cell is one particle of a wall front. Cells are never removed; dead cells
// stay in place so the wall can be reconstructed from parent links.
type Cell struct {
	ID     int
	Strain int  // strain at creation; resolve with Cellular.Strain
	Alive  bool
	Parent int  // cell id, -1 for none
	Merged bool // survived a merge this generation
	Bottom bool // part of a shape's own base, seeds included
	Y, X   int  // intersection
}

// PathValue holds the cost of leaving an intersection in each direction.
// The downward cost is the Up value of the intersection below.
type PathValue struct {
	Left, Up, Right float64
}

// Config holds wall growth parameters.
type Config struct {
	LookaheadDepth int
	Logger         *log.Logger // nil disables logging
}

func DefaultConfig() Config {
	return Config{LookaheadDepth: DefaultLookaheadDepth}
}

// Cellular holds the automaton state for one finished Solution.
type Cellular struct {
	sol    *engine.Solution
	config Config

	height, width int // layout size in cells; intersections are one larger

	terrain    [][]float64
	maxTerrain float64
	shapeID    [][]int // placement index per layout cell, -1 when empty
	paths      [][]PathValue

	cells   []Cell
	space   [][][]int // cell ids per intersection
	strains *strainSet
	heading map[int]int // baseline growth: horizontal direction per cell

	numAlive   int
	generation int
}

// New prepares terrain, path costs and seed cells for sol's layout.
func New(sol *engine.Solution, config Config) *Cellular {
	if config.LookaheadDepth <= 0 {
		config.LookaheadDepth = DefaultLookaheadDepth
	}
	c := &Cellular{
		sol:     sol,
		config:  config,
		height:  sol.Layout.Height(),
		width:   sol.Layout.Width(),
		strains: newStrainSet(len(sol.Placements) + 1),
		heading: make(map[int]int),
	}

	c.shapeID = make([][]int, c.height)
	for y := range c.shapeID {
		c.shapeID[y] = make([]int, c.width)
		for x := range c.shapeID[y] {
			c.shapeID[y][x] = sol.Layout.ShapeAt(y, x)
		}
	}
	c.space = make([][][]int, c.height+1)
	for y := range c.space {
		c.space[y] = make([][]int, c.width+1)
	}

	c.createTerrain()
	c.calcPathValues()
	c.makeInitialCells()
	c.countAlive()
	return c
}

func (c *Cellular) Solution() *engine.Solution { return c.sol }

// Height returns the layout height in cells.
func (c *Cellular) Height() int { return c.height }

// Width returns the layout width in cells.
func (c *Cellular) Width() int { return c.width }

func (c *Cellular) MaxTerrain() float64 { return c.maxTerrain }

// Terrain returns the terrain value of layout cell (y, x).
func (c *Cellular) Terrain(y, x int) float64 { return c.terrain[y][x] }

// PathValues returns the path costs of intersection (y, x).
func (c *Cellular) PathValues(y, x int) PathValue { return c.paths[y][x] }

func (c *Cellular) NumAlive() int { return c.numAlive }

func (c *Cellular) Generation() int { return c.generation }

// Cells returns a copy of every cell created so far, indexed by id.
func (c *Cellular) Cells() []Cell {
	return append([]Cell(nil), c.cells...)
}

// CellsAt returns the cells at intersection (y, x) in creation order.
func (c *Cellular) CellsAt(y, x int) []Cell {
	if !c.inSpace(y, x) {
		return nil
	}
	out := make([]Cell, 0, len(c.space[y][x]))
	for _, id := range c.space[y][x] {
		out = append(out, c.cells[id])
	}
	return out
}

// Strain returns the current strain of a cell after merges.
func (c *Cellular) Strain(id int) int {
	return c.strains.find(c.cells[id].Strain)
}

func (c *Cellular) String() string {
	return fmt.Sprintf("cellular %dx%d gen=%d cells=%d alive=%d", c.width, c.height, c.generation, len(c.cells), c.numAlive)
}

// addCell appends a cell to the arena and to its intersection list.
func (c *Cellular) addCell(y, x, strain int, alive bool, parent int, bottom bool) int {
	id := len(c.cells)
	c.cells = append(c.cells, Cell{
		ID:     id,
		Strain: strain,
		Alive:  alive,
		Parent: parent,
		Bottom: bottom,
		Y:      y,
		X:      x,
	})
	c.space[y][x] = append(c.space[y][x], id)
	return id
}

// inSpace reports whether (y, x) is an intersection of the grid.
func (c *Cellular) inSpace(y, x int) bool {
	return y >= 0 && y <= c.height && x >= 0 && x <= c.width
}

// inLayout reports whether (y, x) is a layout cell.
func (c *Cellular) inLayout(y, x int) bool {
	return y >= 0 && y < c.height && x >= 0 && x < c.width
}

// aliveAt returns the ids of alive cells at (y, x) in ascending order.
func (c *Cellular) aliveAt(y, x int) []int {
	var out []int
	for _, id := range c.space[y][x] {
		if c.cells[id].Alive {
			out = append(out, id)
		}
	}
	return out
}

// hasStrain reports whether any cell at (y, x) belongs to strain root.
func (c *Cellular) hasStrain(y, x, root int) bool {
	for _, id := range c.space[y][x] {
		if c.strains.find(c.cells[id].Strain) == root {
			return true
		}
	}
	return false
}

// hasOther reports whether any cell at (y, x) belongs to a strain other than root.
func (c *Cellular) hasOther(y, x, root int) bool {
	for _, id := range c.space[y][x] {
		if c.strains.find(c.cells[id].Strain) != root {
			return true
		}
	}
	return false
}

// hasDeadOther reports whether a dead cell of a strain other than root is at (y, x).
func (c *Cellular) hasDeadOther(y, x, root int) bool {
	for _, id := range c.space[y][x] {
		cell := c.cells[id]
		if !cell.Alive && c.strains.find(cell.Strain) != root {
			return true
		}
	}
	return false
}

// hasDeadStrain reports whether a dead cell of strain root is at (y, x).
func (c *Cellular) hasDeadStrain(y, x, root int) bool {
	for _, id := range c.space[y][x] {
		cell := c.cells[id]
		if !cell.Alive && c.strains.find(cell.Strain) == root {
			return true
		}
	}
	return false
}

// hasBottom reports whether a Bottom cell of strain root is at (y, x).
func (c *Cellular) hasBottom(y, x, root int) bool {
	for _, id := range c.space[y][x] {
		cell := c.cells[id]
		if cell.Bottom && c.strains.find(cell.Strain) == root {
			return true
		}
	}
	return false
}

func (c *Cellular) countAlive() {
	c.numAlive = 0
	for _, cell := range c.cells {
		if cell.Alive {
			c.numAlive++
		}
	}
}
