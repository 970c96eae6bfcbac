// Package export writes grown cubby layouts to DXF, PDF, QR label sheets and
// Excel cut lists.
package export

import (
	"errors"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/model"
)

// ErrEmptyPlan is returned when there is nothing to draw.
var ErrEmptyPlan = errors.New("plan has no layout")

// Plan bundles everything the exporters draw for one grown layout.
type Plan struct {
	Title    string
	Solution *engine.Solution
	Walls    []cellular.WallSegment
	Runs     []model.WallRun
	Cubbies  []cellular.Cubby
	Estimate model.BoardEstimate
	Settings model.Settings
}

// NewPlan collects walls, runs, cubbies and a board estimate from a grown
// cellular model.
func NewPlan(title string, c *cellular.Cellular, settings model.Settings) Plan {
	runs := c.Runs()
	return Plan{
		Title:    title,
		Solution: c.Solution(),
		Walls:    c.Walls(),
		Runs:     runs,
		Cubbies:  c.Cubbies(),
		Estimate: model.CalculateBoardEstimate(runs, settings.CellSize, settings.StockLength,
			settings.KerfWidth, settings.WastePercent, settings.PricePerBoard),
		Settings: settings,
	}
}

func (p Plan) validate() error {
	if p.Solution == nil || p.Solution.Layout.Height() == 0 {
		return ErrEmptyPlan
	}
	return nil
}

// cellSize returns the mm size of one low-res cell.
func (p Plan) cellSize() float64 {
	if p.Settings.CellSize > 0 {
		return p.Settings.CellSize
	}
	return model.DefaultSettings().CellSize
}

// widthMM and heightMM are the overall layout size.
func (p Plan) widthMM() float64  { return float64(p.Solution.Layout.Width()) * p.cellSize() }
func (p Plan) heightMM() float64 { return float64(p.Solution.Layout.Height()) * p.cellSize() }

// shapeCells lists the layout cells covered by placement i's low-res shape.
func (p Plan) shapeCells(i int) []cellular.CellPos {
	pl := p.Solution.Placements[i]
	var out []cellular.CellPos
	for y, row := range pl.Shape.LowRes {
		for x, v := range row {
			if v {
				out = append(out, cellular.CellPos{
					Y: pl.PosY + pl.Shape.Clearance + y,
					X: pl.PosX + pl.Shape.Clearance + x,
				})
			}
		}
	}
	return out
}

// wallLength is the total wall length in mm.
func (p Plan) wallLength() float64 {
	total := 0
	for _, r := range p.Runs {
		total += r.Length
	}
	return float64(total) * p.cellSize()
}
