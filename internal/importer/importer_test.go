package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/CubbyCut/internal/model"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("1,1,0\n1,1,1\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("1;1;0\n1;1;1\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("x\tx\t\nx\tx\tx\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_CharacterGrid(t *testing.T) {
	data := []byte("##..\n####\n")
	if got := DetectCSVDelimiter(data); got != 0 {
		t.Errorf("expected no delimiter, got %q", got)
	}
}

// ─── Text Import Tests ─────────────────────────────────────

func TestImportTextFromReader_CharacterGrid(t *testing.T) {
	input := "#...\n####\n####\n####\n"
	result := ImportTextFromReader(strings.NewReader(input), "mug", 1)

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(result.Shapes))
	}
	s := result.Shapes[0]
	if s.Title != "mug" {
		t.Errorf("expected title mug, got %q", s.Title)
	}
	if s.HighRes.Height() != 4 || s.HighRes.Width() != 4 {
		t.Errorf("expected 4x4 high-res grid, got %dx%d", s.HighRes.Height(), s.HighRes.Width())
	}
	// First line is the top row
	if !s.HighRes.At(3, 0) || s.HighRes.At(3, 1) {
		t.Errorf("top row parsed wrong:\n%s", s.HighRes)
	}
	if s.Buffer.Height() != 3 || s.Buffer.Width() != 3 {
		t.Errorf("expected 3x3 buffer, got %dx%d", s.Buffer.Height(), s.Buffer.Width())
	}
}

func TestImportTextFromReader_CSVCells(t *testing.T) {
	input := "0,1,1,0\n1,1,1,1\n"
	result := ImportTextFromReader(strings.NewReader(input), "bowl", 0)

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(result.Shapes))
	}
	g := result.Shapes[0].HighRes
	if g.Count() != 6 {
		t.Errorf("expected 6 filled cells, got %d", g.Count())
	}
	if g.At(1, 0) || !g.At(1, 1) || !g.At(0, 0) {
		t.Errorf("unexpected grid:\n%s", g)
	}
}

func TestImportTextFromReader_BlocksAndTitles(t *testing.T) {
	input := "title: Kettle\n####\n####\n\n##\n##\n\ntitle: Tray\n########\n"
	result := ImportTextFromReader(strings.NewReader(input), "kitchen", 1)

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Shapes) != 3 {
		t.Fatalf("expected 3 shapes, got %d", len(result.Shapes))
	}
	want := []string{"Kettle", "kitchen 2", "Tray"}
	for i, s := range result.Shapes {
		if s.Title != want[i] {
			t.Errorf("shape %d: expected title %q, got %q", i, want[i], s.Title)
		}
	}
	if result.Shapes[2].LowRes.Width() != 2 {
		t.Errorf("expected tray low-res width 2, got %d", result.Shapes[2].LowRes.Width())
	}
}

func TestImportTextFromReader_EmptyBlock(t *testing.T) {
	input := "....\n....\n\n##\n"
	result := ImportTextFromReader(strings.NewReader(input), "x", 1)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 1") {
		t.Errorf("expected error to name line 1, got %q", result.Errors[0])
	}
	if len(result.Shapes) != 1 {
		t.Errorf("expected the valid block to import, got %d shapes", len(result.Shapes))
	}
}

func TestImportTextFromReader_TitleOnly(t *testing.T) {
	result := ImportTextFromReader(strings.NewReader("title: nothing\n"), "x", 1)
	if len(result.Shapes) != 0 {
		t.Errorf("expected no shapes, got %d", len(result.Shapes))
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestImportTextFromReader_EmptyInput(t *testing.T) {
	result := ImportTextFromReader(strings.NewReader("\n\n"), "x", 1)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

func TestImportText_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vase.txt")
	if err := os.WriteFile(path, []byte("##\n##\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportText(path, 1)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Shapes) != 1 || result.Shapes[0].Title != "vase" {
		t.Fatalf("expected one shape titled vase, got %+v", result.Shapes)
	}
}

func TestImportText_FileNotFound(t *testing.T) {
	result := ImportText("/nonexistent/path.txt", 1)
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportText_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportText(path, 1)
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "shapes.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("failed to create sheet: %v", err)
		}
		for i, row := range rows {
			for j, val := range row {
				cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
				if err != nil {
					t.Fatalf("failed to get cell name: %v", err)
				}
				if err := f.SetCellValue(name, cellRef, val); err != nil {
					t.Fatalf("failed to set cell value: %v", err)
				}
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_SheetPerShape(t *testing.T) {
	path := createTestExcel(t, map[string][][]interface{}{
		"Teapot": {
			{"x", "", "", ""},
			{"x", "x", "x", "x"},
			{"x", "x", "x", "x"},
		},
		"Plate": {
			{1, 1, 1, 1, 1, 1, 1, 1},
		},
	})

	result := ImportExcel(path, 1)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(result.Shapes))
	}
	byTitle := map[string]*model.Shape{}
	for _, s := range result.Shapes {
		byTitle[s.Title] = s
	}
	teapot := byTitle["Teapot"]
	if teapot == nil {
		t.Fatal("missing Teapot shape")
	}
	if teapot.HighRes.Count() != 9 {
		t.Errorf("expected 9 filled cells, got %d", teapot.HighRes.Count())
	}
	if !teapot.HighRes.At(2, 0) || teapot.HighRes.At(2, 1) {
		t.Errorf("first sheet row should be the top row:\n%s", teapot.HighRes)
	}
	if byTitle["Plate"] == nil || byTitle["Plate"].LowRes.Width() != 2 {
		t.Error("expected Plate with low-res width 2")
	}
}

func TestImportExcel_EmptySheet(t *testing.T) {
	path := createTestExcel(t, map[string][][]interface{}{"Blank": {}})

	result := ImportExcel(path, 1)
	if len(result.Shapes) != 0 {
		t.Errorf("expected no shapes, got %d", len(result.Shapes))
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/file.xlsx", 1)
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

// ─── DXF Import Tests ──────────────────────────────────────

func TestRasterize_Rectangle(t *testing.T) {
	o := model.Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5}}
	g := Rasterize(o, 2.5)
	if g.Height() != 2 || g.Width() != 4 {
		t.Fatalf("expected 2x4 grid, got %dx%d", g.Height(), g.Width())
	}
	if g.Count() != 8 {
		t.Errorf("expected all 8 cells filled, got %d", g.Count())
	}
}

func TestRasterize_Triangle(t *testing.T) {
	o := model.Outline{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}}
	g := Rasterize(o, 1)
	if !g.At(0, 0) || g.At(3, 3) {
		t.Errorf("unexpected triangle raster:\n%s", g)
	}
	if g.Count() != 6 {
		t.Errorf("expected 6 cells under the hypotenuse, got %d", g.Count())
	}
}

func TestChainSegments_Square(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 0, Y: 10}},
		{start: model.Point2D{X: 0, Y: 10}, end: model.Point2D{X: 0, Y: 0}},
	}
	outlines := chainSegments(segs, 0.01)
	if len(outlines) != 1 {
		t.Fatalf("expected 1 outline, got %d", len(outlines))
	}
	if len(outlines[0]) != 4 {
		t.Errorf("expected 4 points, got %d", len(outlines[0]))
	}
	if area := outlineArea(outlines[0]); area != 100 {
		t.Errorf("expected area 100, got %.2f", area)
	}
}

func TestImportDXF_Polyline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cups.dxf")
	d := dxf.NewDrawing()
	if _, err := d.LwPolyline(true,
		[]float64{100, 100}, []float64{150, 100}, []float64{150, 125}, []float64{100, 125}); err != nil {
		t.Fatalf("failed to add polyline: %v", err)
	}
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}

	result := ImportDXF(path, 25, 1)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(result.Shapes))
	}
	s := result.Shapes[0]
	if s.Title != "cups 1" {
		t.Errorf("expected title %q, got %q", "cups 1", s.Title)
	}
	if s.HighRes.Height() != 4 || s.HighRes.Width() != 8 {
		t.Errorf("expected 4x8 high-res grid, got %dx%d", s.HighRes.Height(), s.HighRes.Width())
	}
	if s.LowRes.Width() != 2 || s.LowRes.Height() != 1 {
		t.Errorf("expected 1x2 low-res grid, got %dx%d", s.LowRes.Height(), s.LowRes.Width())
	}
}

func TestImportDXF_InvalidCellSize(t *testing.T) {
	result := ImportDXF("whatever.dxf", 0, 1)
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/file.dxf", 25, 1)
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImport_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "box.csv")
	if err := os.WriteFile(path, []byte("1,1\n1,1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := Import(path, DefaultOptions())
	if len(result.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d (errors %v)", len(result.Shapes), result.Errors)
	}
	if result.Shapes[0].Clearance != model.DefaultClearance {
		t.Errorf("expected default clearance, got %d", result.Shapes[0].Clearance)
	}
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	// Positive bulge sweeps counter-clockwise, so the arc dips below the chord
	pts := bulgeArcPoints(model.Point2D{X: 0, Y: 0}, model.Point2D{X: 2, Y: 0}, 1, 32)
	if len(pts) != 33 {
		t.Fatalf("expected 33 points, got %d", len(pts))
	}
	mid := pts[16]
	if math.Abs(mid.X-1) > 1e-9 || math.Abs(mid.Y+1) > 1e-9 {
		t.Errorf("expected midpoint (1, -1), got (%.3f, %.3f)", mid.X, mid.Y)
	}
	last := pts[len(pts)-1]
	if math.Abs(last.X-2) > 1e-9 || math.Abs(last.Y) > 1e-9 {
		t.Errorf("arc should end at (2, 0), got (%.3f, %.3f)", last.X, last.Y)
	}
}
