package cellular

import (
	"errors"
	"fmt"
	"sort"
)

// ErrGrowthLimit is returned when fronts are still alive after more
// generations than the grid has intersections.
var ErrGrowthLimit = errors.New("wall growth did not terminate")

// StuckError reports a live front with no valid direction to grow in.
type StuckError struct {
	Generation int
	Y, X       int // intersection
	CellID     int
	Strain     int
	Merged     bool
}

func (e *StuckError) Error() string {
	return fmt.Sprintf("cell %d (strain %d, merged=%t) stuck at intersection (%d,%d) in generation %d",
		e.CellID, e.Strain, e.Merged, e.Y, e.X, e.Generation)
}

// move is a pending front advance, committed at the end of its row.
type move struct {
	cell int // -1 once cancelled
	y, x int
}

// candidate is a direction that survived elimination.
type candidate struct {
	dir   Direction
	score float64
}

// Grow runs GrowOnce until no front is alive.
func (c *Cellular) Grow() error {
	limit := (c.width+2)*(c.height+2) + 2
	for c.numAlive > 0 {
		if c.generation >= limit {
			return ErrGrowthLimit
		}
		if err := c.GrowOnce(); err != nil {
			return err
		}
	}
	return nil
}

// GrowOnce advances every live front by one step. Rows are scanned from the
// top down and left to right; the moves of a row are committed only after
// the whole row has been scanned.
func (c *Cellular) GrowOnce() error {
	c.generation++
	for y := c.height; y >= 0; y-- {
		var moves []move
		for x := 0; x <= c.width; x++ {
			if err := c.growAt(y, x, &moves); err != nil {
				return err
			}
		}
		for _, m := range moves {
			if m.cell < 0 {
				continue
			}
			c.cells[m.cell].Alive = false
			c.addCell(m.y, m.x, c.Strain(m.cell), true, m.cell, false)
		}
	}
	c.countAlive()
	if c.config.Logger != nil {
		c.config.Logger.Debug("generation", "n", c.generation, "alive", c.numAlive, "cells", len(c.cells))
	}
	return nil
}

// growAt applies the merge, passing, crowding and movement rules to the
// fronts at intersection (y, x).
func (c *Cellular) growAt(y, x int, moves *[]move) error {
	alive := c.aliveAt(y, x)
	if len(alive) == 0 {
		return nil
	}

	id := alive[0]
	if len(alive) > 1 {
		strains := make([]int, len(alive))
		for i, a := range alive {
			strains[i] = c.cells[a].Strain
		}
		c.mergeStrains(strains...)
		for _, other := range alive[1:] {
			c.kill(other, moves)
		}
		c.cells[id].Merged = true
	} else {
		c.passingMerge(y, x, id, moves)
		if !c.cells[id].Alive {
			return nil
		}
	}

	cell := &c.cells[id]
	if !cell.Merged && c.hasDeadOther(y, x, c.Strain(id)) {
		cell.Alive = false
		return nil
	}

	dir, err := c.chooseDirection(id)
	if err != nil {
		return err
	}
	*moves = append(*moves, move{cell: id, y: y + offsets[dir][0], x: x + offsets[dir][1]})
	return nil
}

// passingMerge handles two fronts that crossed in the previous generation:
// a neighbour on the same row belongs to a strain that left a dead cell here.
// The strains merge and only the front with the better upward outlook survives.
func (c *Cellular) passingMerge(y, x, id int, moves *[]move) {
	root := c.Strain(id)
	for _, nx := range []int{x - 1, x + 1} {
		if !c.inSpace(y, nx) {
			continue
		}
		for _, other := range c.aliveAt(y, nx) {
			otherRoot := c.Strain(other)
			if otherRoot == root || !c.hasDeadStrain(y, x, otherRoot) {
				continue
			}
			merged := c.mergeStrains(root, otherRoot)
			here := c.calcOppScore(y, x, merged, y+1, x, c.config.LookaheadDepth, true)
			there := c.calcOppScore(y, nx, merged, y+1, nx, c.config.LookaheadDepth, true)

			winner, loser := id, other
			if there < here {
				winner, loser = other, id
			}
			c.kill(loser, moves)
			c.cells[winner].Merged = true
			return
		}
	}
}

// kill marks a cell dead and cancels its pending move.
func (c *Cellular) kill(id int, moves *[]move) {
	c.cells[id].Alive = false
	for i := range *moves {
		if (*moves)[i].cell == id {
			(*moves)[i].cell = -1
		}
	}
}

// chooseDirection eliminates invalid moves for a live cell and picks one of
// the rest: the only one, one that reaches another strain, the strictly
// cheapest, or on a tie the current heading.
func (c *Cellular) chooseDirection(id int) (Direction, error) {
	cell := c.cells[id]
	root := c.Strain(id)

	var valid []candidate
	for _, dir := range []Direction{Left, Up, Right} {
		ty, tx := cell.Y+offsets[dir][0], cell.X+offsets[dir][1]
		if !c.inSpace(ty, tx) {
			continue
		}
		if cell.Parent >= 0 {
			if p := c.cells[cell.Parent]; p.Y == ty && p.X == tx {
				continue
			}
		}
		if dir != Up && c.hasBottom(ty, tx, root) {
			continue
		}
		if cell.Merged && c.hasStrain(ty, tx, root) {
			continue
		}
		if c.pathCost(cell.Y, cell.X, dir) >= c.maxTerrain {
			continue
		}
		valid = append(valid, candidate{dir: dir, score: c.calcOppScore(cell.Y, cell.X, root, ty, tx, c.config.LookaheadDepth, true)})
	}

	switch len(valid) {
	case 0:
		return 0, &StuckError{
			Generation: c.generation,
			Y:          cell.Y,
			X:          cell.X,
			CellID:     id,
			Strain:     root,
			Merged:     cell.Merged,
		}
	case 1:
		return valid[0].dir, nil
	}

	for _, v := range valid {
		if c.hasOther(cell.Y+offsets[v.dir][0], cell.X+offsets[v.dir][1], root) {
			return v.dir, nil
		}
	}

	heading, ok := c.headingOf(cell)
	return pickDirection(valid, heading, ok), nil
}

// pickDirection returns the strictly cheapest of at least two candidates. On
// a tie for the lowest score the heading wins if it is tied, otherwise the
// first tied candidate in list order.
func pickDirection(valid []candidate, heading Direction, hasHeading bool) Direction {
	sorted := append([]candidate(nil), valid...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].score < sorted[j].score })
	if sorted[0].score < sorted[1].score {
		return sorted[0].dir
	}

	lowest := sorted[0].score
	if hasHeading {
		for _, v := range valid {
			if v.dir == heading && v.score == lowest {
				return v.dir
			}
		}
	}
	return sorted[0].dir
}

// headingOf infers the direction a front was moving from its parent.
func (c *Cellular) headingOf(cell Cell) (Direction, bool) {
	if cell.Parent < 0 {
		return 0, false
	}
	p := c.cells[cell.Parent]
	if abs(p.Y-cell.Y)+abs(p.X-cell.X) != 1 {
		return 0, false
	}
	return directionBetween(p.Y, p.X, cell.Y, cell.X), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
