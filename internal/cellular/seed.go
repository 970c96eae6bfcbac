package cellular

// makeInitialCells lays a dead strain-0 wall around the perimeter and seeds
// two live fronts under every enabled shape.
func (c *Cellular) makeInitialCells() {
	// Perimeter, anticlockwise from the bottom-left corner and back to it so
	// the parent chain closes the loop.
	prev := -1
	add := func(y, x int) {
		prev = c.addCell(y, x, 0, false, prev, false)
	}
	for x := 0; x <= c.width; x++ {
		add(0, x)
	}
	for y := 1; y <= c.height; y++ {
		add(y, c.width)
	}
	for x := c.width - 1; x >= 0; x-- {
		add(c.height, x)
	}
	for y := c.height - 1; y >= 0; y-- {
		add(y, 0)
	}

	for i, p := range c.sol.Placements {
		if !p.Enabled {
			continue
		}
		strain := i + 1
		left, right := overhangShift(p.Shape.LowRes[0])
		if left < 0 {
			continue
		}
		y0 := p.PosY + p.Shape.Clearance
		x0 := p.PosX + p.Shape.Clearance

		// Left seed, dead base cells under the shape, right seed. The seeds
		// are base corners too: a one cell wide base has nothing between
		// them, and neither may step sideways onto the other.
		seed := c.addCell(y0, x0+left, strain, true, -1, true)
		c.heading[seed] = -1
		prev := seed
		for x := x0 + left + 1; x <= x0+right; x++ {
			prev = c.addCell(y0, x, strain, false, prev, true)
		}
		seed = c.addCell(y0, x0+right+1, strain, true, prev, true)
		c.heading[seed] = 1
	}
}

// overhangShift returns the first and last filled columns of a row, or -1, -1.
func overhangShift(row []bool) (left, right int) {
	left, right = -1, -1
	for x, v := range row {
		if !v {
			continue
		}
		if left < 0 {
			left = x
		}
		right = x
	}
	return left, right
}
