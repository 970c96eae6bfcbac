package cellular

import "math"

// calcOppScore estimates the cost of completing a good wall from option,
// reached from origin by a front of strain root. Lower is better.
//
// Paths back to the origin or through cells of the same strain are invalid.
// A dead cell of another strain is an attractive terminus with cost 1 and is
// not expanded. A move that leaves the grid scores 1. If the option is boxed
// in below and on a side by its own strain the score is +Inf. The downward
// path is never taken; it is only inspected for that dead-end test.
func (c *Cellular) calcOppScore(originY, originX, root, y, x, depth int, outermost bool) float64 {
	if !c.inSpace(y, x) {
		return 1
	}

	best := math.Inf(1)
	blockedDown, blockedSide := false, false
	for _, dir := range []Direction{Left, Up, Right, Down} {
		ty, tx := y+offsets[dir][0], x+offsets[dir][1]
		if ty == originY && tx == originX {
			continue
		}
		cost := c.pathCost(y, x, dir)
		terminal := false
		if c.inSpace(ty, tx) {
			if c.hasStrain(ty, tx, root) {
				switch dir {
				case Down:
					blockedDown = true
				case Left, Right:
					blockedSide = true
				}
				continue
			}
			if c.hasDeadOther(ty, tx, root) {
				cost = 1
				terminal = true
			}
		}
		if dir == Down {
			continue
		}

		total := cost
		if depth > 0 && !terminal {
			total += c.calcOppScore(y, x, root, ty, tx, depth-1, false)
		}
		best = math.Min(best, total)
	}

	if blockedDown && blockedSide {
		return math.Inf(1)
	}
	if outermost {
		best += c.pathCost(originY, originX, directionBetween(originY, originX, y, x))
	}
	return best
}

// directionBetween returns the direction of a unit move from (y1, x1) to (y2, x2).
func directionBetween(y1, x1, y2, x2 int) Direction {
	switch {
	case y2 > y1:
		return Up
	case y2 < y1:
		return Down
	case x2 < x1:
		return Left
	default:
		return Right
	}
}
