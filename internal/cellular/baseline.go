package cellular

// BaselineTickLimit caps GrowBaseline.
const BaselineTickLimit = 1000

// BaselineResult summarises a GrowBaseline run.
type BaselineResult struct {
	Ticks  int
	Stuck  int  // fronts that could not move for two consecutive ticks
	Capped bool // stopped by BaselineTickLimit
}

// GrowBaseline grows walls with a simple comparison policy instead of the
// lookahead: fronts alternate between a horizontal tick, moving away from
// their shape, and a vertical tick, moving up. Each move covers the free
// distance to the next wall, halved when the scan is stopped by a shape.
// Run it on a fresh Cellular instead of Grow, not after it.
func (c *Cellular) GrowBaseline() BaselineResult {
	var res BaselineResult
	idle := make(map[int]int)

	for tick := 0; c.numAlive > 0; tick++ {
		if tick >= BaselineTickLimit {
			res.Capped = true
			break
		}
		res.Ticks++
		c.generation++
		horizontal := tick%2 == 0

		var alive []int
		for _, cell := range c.cells {
			if cell.Alive {
				alive = append(alive, cell.ID)
			}
		}

		for _, id := range alive {
			cell := c.cells[id]
			if !cell.Alive {
				continue
			}

			if together := c.aliveAt(cell.Y, cell.X); len(together) > 1 {
				strains := make([]int, len(together))
				for i, a := range together {
					strains[i] = c.cells[a].Strain
				}
				c.mergeStrains(strains...)
				for _, other := range together[1:] {
					c.cells[other].Alive = false
				}
				if together[0] != id {
					continue
				}
			}

			dir := Up
			if horizontal {
				dir = Right
				if c.heading[id] < 0 {
					dir = Left
				}
			}

			steps := c.allowance(id, dir)
			if steps == 0 {
				idle[id]++
				if idle[id] >= 2 {
					c.cells[id].Alive = false
					res.Stuck++
				}
				continue
			}

			last := c.advance(id, dir, steps)
			root := c.Strain(last)
			for _, other := range c.space[c.cells[last].Y][c.cells[last].X] {
				if otherRoot := c.Strain(other); otherRoot != root {
					if otherRoot > 0 {
						c.mergeStrains(root, otherRoot)
					}
					c.cells[last].Alive = false
					break
				}
			}
		}
		c.countAlive()
	}
	return res
}

// allowance scans from a cell in dir and returns how many unit steps it may
// take: up to and onto the first cell of another strain, up to its own
// strain, or half the free distance to a shape edge.
func (c *Cellular) allowance(id int, dir Direction) int {
	cell := c.cells[id]
	root := c.Strain(id)
	y, x := cell.Y, cell.X
	for k := 1; ; k++ {
		if c.pathCost(y, x, dir) >= c.maxTerrain {
			return k / 2
		}
		ty, tx := y+offsets[dir][0], x+offsets[dir][1]
		if !c.inSpace(ty, tx) {
			return k - 1
		}
		if c.hasOther(ty, tx, root) {
			return k
		}
		if c.hasStrain(ty, tx, root) {
			return k - 1
		}
		y, x = ty, tx
	}
}

// advance moves a front steps units in dir, leaving a dead cell at every
// intermediate intersection so the parent chain stays contiguous. It returns
// the id of the new front.
func (c *Cellular) advance(id int, dir Direction, steps int) int {
	heading := c.heading[id]
	strain := c.Strain(id)
	c.cells[id].Alive = false
	prev := id
	y, x := c.cells[id].Y, c.cells[id].X
	for s := 1; s <= steps; s++ {
		y, x = y+offsets[dir][0], x+offsets[dir][1]
		prev = c.addCell(y, x, strain, s == steps, prev, false)
	}
	c.heading[prev] = heading
	return prev
}
