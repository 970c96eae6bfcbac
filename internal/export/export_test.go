package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/CubbyCut/internal/cellular"
	"github.com/piwi3910/CubbyCut/internal/engine"
	"github.com/piwi3910/CubbyCut/internal/model"
)

// buildTestPlan grows walls around two flat shapes standing side by side.
func buildTestPlan(t *testing.T) Plan {
	t.Helper()
	var placements []model.Placement
	for i, title := range []string{"Kettle", "Toaster"} {
		s, err := model.NewShape(title, model.FilledGrid(4, 8), 1)
		if err != nil {
			t.Fatalf("NewShape: %v", err)
		}
		placements = append(placements, model.NewPlacement(s, 4*i, 0))
	}
	sol := engine.NewSolution(placements, 0, model.AspectSquare, 0)
	c := cellular.New(sol, cellular.DefaultConfig())
	if err := c.Grow(); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	settings := model.DefaultSettings()
	settings.PricePerBoard = 12.5
	return NewPlan("Kitchen", c, settings)
}

func assertFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestNewPlan(t *testing.T) {
	plan := buildTestPlan(t)

	if len(plan.Cubbies) != 2 {
		t.Fatalf("expected 2 cubbies, got %d", len(plan.Cubbies))
	}
	if len(plan.Runs) != 6 {
		t.Errorf("expected 6 wall runs, got %d", len(plan.Runs))
	}
	// 3 horizontal runs of 8 cells, 2 outer verticals of 3, one divider of 2
	if want := float64(3*8+2*3+2) * 25; plan.Estimate.TotalLength != want {
		t.Errorf("expected total length %.0f, got %.0f", want, plan.Estimate.TotalLength)
	}
	if plan.wallLength() != plan.Estimate.TotalLength {
		t.Errorf("wall length %.0f disagrees with estimate %.0f", plan.wallLength(), plan.Estimate.TotalLength)
	}
	if plan.widthMM() != 200 || plan.heightMM() != 75 {
		t.Errorf("expected 200x75 mm, got %.0fx%.0f", plan.widthMM(), plan.heightMM())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pdf")
	if err := ExportPDF(path, buildTestPlan(t)); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestExportPDF_EmptyPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportPDF(path, Plan{}); err != ErrEmptyPlan {
		t.Fatalf("expected ErrEmptyPlan, got %v", err)
	}
}

func TestExportPDF_InvalidLayout(t *testing.T) {
	plan := buildTestPlan(t)
	plan.Solution.Valid = false
	path := filepath.Join(t.TempDir(), "invalid.pdf")
	if err := ExportPDF(path, plan); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestPlan(t))
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Title != "Kettle" || labels[1].Title != "Toaster" {
		t.Errorf("unexpected titles: %q, %q", labels[0].Title, labels[1].Title)
	}
	if labels[0].Cells != 8 || labels[0].AreaMM2 != 8*25*25 {
		t.Errorf("unexpected area: %d cells, %.0f mm2", labels[0].Cells, labels[0].AreaMM2)
	}
	if labels[1].X != 125 || labels[1].Y != 25 {
		t.Errorf("expected Toaster at (125, 25), got (%.0f, %.0f)", labels[1].X, labels[1].Y)
	}

	data, err := json.Marshal(labels[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded LabelInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != labels[0] {
		t.Errorf("label JSON round trip changed it: %+v", decoded)
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	if err := ExportLabels(path, buildTestPlan(t)); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFile(t, path, 1000)
}

func TestExportLabels_NoCubbies(t *testing.T) {
	plan := buildTestPlan(t)
	plan.Cubbies = nil
	if err := ExportLabels(filepath.Join(t.TempDir(), "none.pdf"), plan); err != ErrNoCubbies {
		t.Fatalf("expected ErrNoCubbies, got %v", err)
	}
}

func TestExportDXF_Layers(t *testing.T) {
	plan := buildTestPlan(t)
	path := filepath.Join(t.TempDir(), "layout.dxf")
	if err := ExportDXF(path, plan); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	d, err := dxf.Open(path)
	if err != nil {
		t.Fatalf("cannot reopen DXF: %v", err)
	}
	lines, polys := 0, 0
	for _, e := range d.Entities() {
		switch e.(type) {
		case *entity.Line:
			lines++
		case *entity.LwPolyline:
			polys++
		}
	}
	if lines != len(plan.Walls) {
		t.Errorf("expected %d wall lines, got %d", len(plan.Walls), lines)
	}
	// Each shape covers two low-res cells
	if polys != 4 {
		t.Errorf("expected 4 shape cells, got %d", polys)
	}
}

func TestExportDXF_EmptyPlan(t *testing.T) {
	if err := ExportDXF(filepath.Join(t.TempDir(), "x.dxf"), Plan{}); err != ErrEmptyPlan {
		t.Fatalf("expected ErrEmptyPlan, got %v", err)
	}
}

func TestCollectCutList(t *testing.T) {
	rows := CollectCutList(buildTestPlan(t))
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Board != 1 || first.Orientation != "horizontal" || first.Length != 200 {
		t.Errorf("unexpected first row: %+v", first)
	}
	last := rows[len(rows)-1]
	if last.Orientation != "vertical" || last.StartX != 200 {
		t.Errorf("unexpected last row: %+v", last)
	}
}

func TestExportCutList_Sheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	if err := ExportCutList(path, buildTestPlan(t)); err != nil {
		t.Fatalf("ExportCutList returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cutListSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 7 {
		t.Errorf("expected header plus 6 boards, got %d rows", len(rows))
	}
	if rows[0][0] != "Board" {
		t.Errorf("unexpected header %v", rows[0])
	}

	cubbies, err := f.GetRows(cubbySheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(cubbies) != 3 || cubbies[1][1] != "Kettle" {
		t.Errorf("unexpected cubby sheet: %v", cubbies)
	}
}
