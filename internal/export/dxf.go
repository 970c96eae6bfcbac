package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	LayerWalls  = "WALLS"
	LayerShapes = "SHAPES"
)

// ExportDXF writes the plan's walls as LINE entities on the WALLS layer and
// the outline of every low-res shape cell on the SHAPES layer. Coordinates
// are in mm with the floor at y=0.
func ExportDXF(path string, plan Plan) error {
	if err := plan.validate(); err != nil {
		return err
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerShapes, color.Cyan, table.LT_CONTINUOUS, false); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerShapes, err)
	}
	if _, err := d.AddLayer(LayerWalls, color.Red, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerWalls, err)
	}

	cs := plan.cellSize()
	for _, w := range plan.Walls {
		if _, err := d.Line(float64(w.MinX)*cs, float64(w.MinY)*cs, 0,
			float64(w.MaxX)*cs, float64(w.MaxY)*cs, 0); err != nil {
			return fmt.Errorf("failed to add wall %s: %w", w.Key(), err)
		}
	}

	if err := d.ChangeLayer(LayerShapes); err != nil {
		return fmt.Errorf("failed to switch to layer %s: %w", LayerShapes, err)
	}
	for i, pl := range plan.Solution.Placements {
		if !pl.Enabled {
			continue
		}
		for _, c := range plan.shapeCells(i) {
			x, y := float64(c.X)*cs, float64(c.Y)*cs
			if _, err := d.LwPolyline(true,
				[]float64{x, y}, []float64{x + cs, y}, []float64{x + cs, y + cs}, []float64{x, y + cs}); err != nil {
				return fmt.Errorf("failed to add shape %q: %w", pl.Shape.Title, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}
