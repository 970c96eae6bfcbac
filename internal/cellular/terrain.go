package cellular

import "math"

// createTerrain builds the cost landscape. Shape cells start infinite and
// every other cell repeatedly adds the number of its eight neighbours that
// were positive in the previous pass, until no cell is zero. This yields hills
// around shapes rather than a distance field. Shape cells finally take the
// running maximum plus two, which becomes maxTerrain.
func (c *Cellular) createTerrain() {
	c.terrain = make([][]float64, c.height)
	for y := range c.terrain {
		c.terrain[y] = make([]float64, c.width)
		for x := range c.terrain[y] {
			if c.sol.Layout[y][x].IsShape {
				c.terrain[y][x] = math.Inf(1)
			}
		}
	}

	runningMax := 0.0
	prev := make([][]float64, c.height)
	for {
		zeros := 0
		changed := false
		for y := range c.terrain {
			prev[y] = append(prev[y][:0], c.terrain[y]...)
		}
		for y := range c.terrain {
			for x := range c.terrain[y] {
				if math.IsInf(prev[y][x], 1) {
					continue
				}
				positive := 0
				for _, d := range neighbours {
					ny, nx := y+d[0], x+d[1]
					if c.inLayout(ny, nx) && prev[ny][nx] > 0 {
						positive++
					}
				}
				if positive > 0 {
					c.terrain[y][x] += float64(positive)
					changed = true
				}
				if c.terrain[y][x] == 0 {
					zeros++
				}
				runningMax = math.Max(runningMax, c.terrain[y][x])
			}
		}
		// No shape cells means nothing ever becomes positive
		if zeros == 0 || !changed {
			break
		}
	}

	c.maxTerrain = runningMax + 2
	for y := range c.terrain {
		for x := range c.terrain[y] {
			if math.IsInf(c.terrain[y][x], 1) {
				c.terrain[y][x] = c.maxTerrain
			}
		}
	}
}

// neighbours lists the eight compass offsets as (dy, dx).
var neighbours = [8][2]int{
	{1, -1}, {1, 0}, {1, 1},
	{0, -1}, {0, 1},
	{-1, -1}, {-1, 0}, {-1, 1},
}

// cellInfo returns the terrain and shape of a layout cell. Cells outside the
// layout have terrain 1 and no shape.
func (c *Cellular) cellInfo(y, x int) (float64, int) {
	if !c.inLayout(y, x) {
		return 1, -1
	}
	return c.terrain[y][x], c.shapeID[y][x]
}

// pairCost is the cost of walking between two cells: 1 along the boundary of
// two different shapes, else the mean terrain.
func (c *Cellular) pairCost(y1, x1, y2, x2 int) float64 {
	t1, s1 := c.cellInfo(y1, x1)
	t2, s2 := c.cellInfo(y2, x2)
	if s1 >= 0 && s2 >= 0 && s1 != s2 {
		return 1
	}
	return (t1 + t2) / 2
}

// calcPathValues derives the outgoing costs of every intersection from its
// four diagonal cells. Intersection (y, x) is the lower-left corner of cell (y, x).
func (c *Cellular) calcPathValues() {
	c.paths = make([][]PathValue, c.height+1)
	for y := range c.paths {
		c.paths[y] = make([]PathValue, c.width+1)
		for x := range c.paths[y] {
			c.paths[y][x] = PathValue{
				Left:  c.pairCost(y, x-1, y-1, x-1),
				Up:    c.pairCost(y, x-1, y, x),
				Right: c.pairCost(y, x, y-1, x),
			}
		}
	}
}

// pathCost returns the cost of moving from intersection (y, x) in dir.
// Moves that leave the grid cost 1.
func (c *Cellular) pathCost(y, x int, dir Direction) float64 {
	ty, tx := y+offsets[dir][0], x+offsets[dir][1]
	if !c.inSpace(y, x) || !c.inSpace(ty, tx) {
		return 1
	}
	switch dir {
	case Left:
		return c.paths[y][x].Left
	case Up:
		return c.paths[y][x].Up
	case Right:
		return c.paths[y][x].Right
	default:
		return c.paths[ty][tx].Up
	}
}
