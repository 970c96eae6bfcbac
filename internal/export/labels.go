package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrNoCubbies is returned when a plan has no cubbies to label.
var ErrNoCubbies = errors.New("no cubbies to generate labels for")

// LabelInfo holds the data encoded into each cubby label's QR code.
type LabelInfo struct {
	ShapeID string  `json:"shape_id"`
	Title   string  `json:"title"`
	Index   int     `json:"cubby"`
	Cells   int     `json:"cells"`
	AreaMM2 float64 `json:"area_mm2"`
	X       float64 `json:"x_mm"` // shape's bottom-left corner
	Y       float64 `json:"y_mm"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLabelInfos builds one label per cubby, in placement order.
func CollectLabelInfos(plan Plan) []LabelInfo {
	if plan.Solution == nil {
		return nil
	}
	cs := plan.cellSize()
	var labels []LabelInfo
	for _, cb := range plan.Cubbies {
		pl := plan.Solution.Placements[cb.Index]
		labels = append(labels, LabelInfo{
			ShapeID: pl.Shape.ID,
			Title:   cb.Title,
			Index:   cb.Index + 1,
			Cells:   cb.Area,
			AreaMM2: float64(cb.Area) * cs * cs,
			X:       float64(pl.PosX+pl.Shape.Clearance) * cs,
			Y:       float64(pl.PosY+pl.Shape.Clearance) * cs,
		})
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels, one per cubby, laid out on
// a standard label sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, plan Plan) error {
	labels := CollectLabelInfos(plan)
	if len(labels) == 0 {
		return ErrNoCubbies
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Title, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.ShapeID, info.Index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	title := info.Title
	if pdf.GetStringWidth(title) > textW {
		for len(title) > 0 && pdf.GetStringWidth(title+"...") > textW {
			title = title[:len(title)-1]
		}
		title += "..."
	}
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("Cubby %d: %d cells", info.Index, info.Cells), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%.0f mm2 @ (%.0f, %.0f)", info.AreaMM2, info.X, info.Y), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
