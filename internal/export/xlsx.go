package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	cutListSheet = "Cut List"
	cubbySheet   = "Cubbies"
)

// CutListRow is one board of the cut list.
type CutListRow struct {
	Board       int
	Orientation string
	StartX      float64 // mm
	StartY      float64 // mm
	Length      float64 // mm
}

// CollectCutList turns the plan's wall runs into cut list rows: horizontal
// boards bottom to top, then vertical boards left to right.
func CollectCutList(plan Plan) []CutListRow {
	cs := plan.cellSize()
	rows := make([]CutListRow, 0, len(plan.Runs))
	for i, r := range plan.Runs {
		orientation := "vertical"
		if r.Horizontal {
			orientation = "horizontal"
		}
		rows = append(rows, CutListRow{
			Board:       i + 1,
			Orientation: orientation,
			StartX:      float64(r.X) * cs,
			StartY:      float64(r.Y) * cs,
			Length:      float64(r.Length) * cs,
		})
	}
	return rows
}

// ExportCutList writes a workbook with one row per straight wall board and a
// second sheet listing cubby areas.
func ExportCutList(path string, plan Plan) error {
	if err := plan.validate(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cutListSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeRows(f, cutListSheet, []interface{}{"Board", "Orientation", "Start X (mm)", "Start Y (mm)", "Length (mm)"}, cutListValues(plan)); err != nil {
		return err
	}

	if _, err := f.NewSheet(cubbySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	cs := plan.cellSize()
	var cubbies [][]interface{}
	for _, cb := range plan.Cubbies {
		cubbies = append(cubbies, []interface{}{cb.Index + 1, cb.Title, cb.Area, float64(cb.Area) * cs * cs})
	}
	if err := writeRows(f, cubbySheet, []interface{}{"Cubby", "Shape", "Cells", "Area (mm2)"}, cubbies); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cutListValues(plan Plan) [][]interface{} {
	var out [][]interface{}
	for _, r := range CollectCutList(plan) {
		out = append(out, []interface{}{r.Board, r.Orientation, r.StartX, r.StartY, r.Length})
	}
	return out
}

// writeRows writes a header and data rows starting at A1.
func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
