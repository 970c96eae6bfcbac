package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
)

// shapeColor represents an RGB fill for a shape's cubby.
type shapeColor struct {
	R, G, B int
}

// shapeColors cycles across placements.
var shapeColors = []shapeColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a two page document: the layout with cubbies, shapes
// and walls, then a summary with score, cubby areas and the board estimate.
func ExportPDF(path string, plan Plan) error {
	if err := plan.validate(); err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, plan)

	pdf.AddPage()
	renderSummaryPage(pdf, plan)

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the grid scaled to fit the page. PDF y grows
// downwards so rows are flipped.
func renderLayoutPage(pdf *fpdf.Fpdf, plan Plan) {
	sol := plan.Solution
	cs := plan.cellSize()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := plan.Title
	if title == "" {
		title = "Cubby layout"
	}
	title = fmt.Sprintf("%s (%.0f x %.0f mm)", title, plan.widthMM(), plan.heightMM())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Shapes: %d | Score: %d | Valid: %t | Walls: %.0f mm in %d boards",
		len(sol.Placements), sol.Score, sol.Valid, plan.wallLength(), len(plan.Runs))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/plan.widthMM(), drawHeight/plan.heightMM())
	canvasW := plan.widthMM() * scale
	canvasH := plan.heightMM() * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	cell := cs * scale
	toPage := func(y, x int) (float64, float64) {
		return offsetX + float64(x)*cell, offsetY + canvasH - float64(y)*cell
	}

	// Background
	pdf.SetFillColor(245, 240, 230)
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Cubbies in a light tint
	for _, cb := range plan.Cubbies {
		col := shapeColors[cb.Index%len(shapeColors)]
		pdf.SetFillColor(lighten(col.R), lighten(col.G), lighten(col.B))
		for pos := range cb.Cells {
			px, py := toPage(pos.Y, pos.X)
			pdf.Rect(px, py-cell, cell, cell, "F")
		}
	}

	// Shapes in full colour
	for i, pl := range sol.Placements {
		if !pl.Enabled {
			continue
		}
		col := shapeColors[i%len(shapeColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.1)
		for _, c := range plan.shapeCells(i) {
			px, py := toPage(c.Y, c.X)
			pdf.Rect(px, py-cell, cell, cell, "FD")
		}
	}

	// Walls on top
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(math.Max(0.4, plan.Settings.BoardThickness*scale))
	for _, w := range plan.Walls {
		x1, y1 := toPage(w.MinY, w.MinX)
		x2, y2 := toPage(w.MaxY, w.MaxX)
		pdf.Line(x1, y1, x2, y2)
	}

	drawShapeLegend(pdf, plan, offsetY+canvasH+5)
}

// lighten blends a colour channel towards white.
func lighten(c int) int {
	return c + (255-c)*3/4
}

// drawShapeLegend renders a compact legend of shapes below the layout.
func drawShapeLegend(pdf *fpdf.Fpdf, plan Plan, startY float64) {
	sol := plan.Solution
	if len(sol.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Shapes:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, pl := range sol.Placements {
		col := shapeColors[i%len(shapeColors)]
		label := fmt.Sprintf("%s (%dx%d)", pl.Shape.Title, pl.Shape.LowRes.Width(), pl.Shape.LowRes.Height())
		if !pl.Enabled {
			label += " off"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws score, cubby and board tables.
func renderSummaryPage(pdf *fpdf.Fpdf, plan Plan) {
	sol := plan.Solution
	est := plan.Estimate
	cs := plan.cellSize()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cubby Layout Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Layout", fmt.Sprintf("%d x %d cells (%.0f x %.0f mm)", sol.Layout.Width(), sol.Layout.Height(), plan.widthMM(), plan.heightMM())},
		{"Score", fmt.Sprintf("%d", sol.Score)},
		{"Valid", fmt.Sprintf("%t", sol.Valid)},
		{"Wall Length", fmt.Sprintf("%.0f mm", est.TotalLength)},
		{"Boards Needed", fmt.Sprintf("%d (%d with %.0f%% waste)", est.BoardsNeeded, est.BoardsWithWaste, est.WastePercent)},
		{"Utilization", fmt.Sprintf("%.1f%%", est.Utilization)},
	}
	if est.PricePerBoard > 0 {
		summaryItems = append(summaryItems, struct {
			label string
			value string
		}{"Estimated Cost", fmt.Sprintf("%.2f", est.EstimatedCost)})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cubbies", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 80, 40, 50}
	headers := []string{"#", "Shape", "Cells", "Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, cb := range plan.Cubbies {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", cb.Index+1),
			cb.Title,
			fmt.Sprintf("%d", cb.Area),
			fmt.Sprintf("%.0f mm²", float64(cb.Area)*cs*cs),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if !sol.Valid {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Layout has overlapping or floating shapes", "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CubbyCut - Cubby Layout Designer", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
