package gcode

import "fmt"

// Violation is a cutting move that leaves the sheet.
type Violation struct {
	Sheet int
	Line  int
	X, Y  float64
}

func (v Violation) String() string {
	return fmt.Sprintf("sheet %d line %d: tool at (%.1f, %.1f) is off the sheet", v.Sheet, v.Line, v.X, v.Y)
}

// CheckBounds reports every move that ends below Z0 outside the sheet. The
// tool centre may sit on the edge but not beyond it.
func CheckBounds(sheet Sheet, moves []Move) []Violation {
	var out []Violation
	for _, m := range moves {
		if m.Type == MoveRapid || m.Type == MoveRetract || m.ToZ >= 0 {
			continue
		}
		if m.ToX < -0.001 || m.ToY < -0.001 || m.ToX > sheet.Width+0.001 || m.ToY > sheet.Height+0.001 {
			out = append(out, Violation{Sheet: sheet.Index, Line: m.Line, X: m.ToX, Y: m.ToY})
		}
	}
	return out
}
