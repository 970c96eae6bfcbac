package gcode

import (
	"strings"
	"testing"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// newTestSettings returns settings with predictable output.
func newTestSettings() model.CNCSettings {
	s := model.DefaultCNCSettings()
	s.ToolDiameter = 6.0
	s.FeedRate = 1000.0
	s.PlungeRate = 300.0
	s.SpindleSpeed = 12000
	s.SafeZ = 5.0
	s.PassDepth = 6.0
	s.Profile = "Generic"
	s.TabsPerSide = 0
	return s
}

func newTestSheet() Sheet {
	return Sheet{
		Index:  1,
		Width:  500,
		Height: 300,
		Placements: []Placement{{
			Board: Board{Label: "H1", Length: 100, Width: 50},
			X:     10,
			Y:     10,
		}},
	}
}

func TestGenerateSheet_SinglePass(t *testing.T) {
	gen := New(newTestSettings(), 6)
	code := gen.GenerateSheet(newTestSheet())

	for _, want := range []string{
		"; CubbyCut wall boards, sheet 1",
		"G90",
		"M3 S12000",
		"; Board 1: H1 (100.0 x 50.0)",
		"G0 X7.000 Y7.000",
		"G1 Z-6.000 F300.000",
		"G1 X113.000 Y7.000 F1000.000",
		"G1 X113.000 Y63.000",
		"G1 X7.000 Y63.000",
		"G1 X7.000 Y7.000",
		"M5",
		"M2",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(code, "Pass 2/") {
		t.Error("expected a single pass")
	}
}

func TestGenerateSheet_MultiPass(t *testing.T) {
	s := newTestSettings()
	s.PassDepth = 2.5
	gen := New(s, 6)
	if gen.Passes() != 3 {
		t.Fatalf("Passes() = %d, want 3", gen.Passes())
	}

	code := gen.GenerateSheet(newTestSheet())
	for _, want := range []string{"Z-2.500", "Z-5.000", "Z-6.000", "Pass 3/3"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(code, "Z-7.500") {
		t.Error("final pass should stop at the board thickness")
	}
}

func TestGenerateSheet_ZeroPassDepth(t *testing.T) {
	s := newTestSettings()
	s.PassDepth = 0
	if got := New(s, 18).Passes(); got != 1 {
		t.Errorf("Passes() = %d, want 1", got)
	}
}

func TestGenerateSheet_Tabs(t *testing.T) {
	s := newTestSettings()
	s.PassDepth = 3
	s.TabsPerSide = 1
	s.TabWidth = 8
	s.TabHeight = 2
	gen := New(s, 6)
	code := gen.GenerateSheet(newTestSheet())

	// Tab raises to depth-tabHeight on the final pass only
	if got := strings.Count(code, "G1 Z-4.000"); got != 4 {
		t.Errorf("expected 4 tab raises, got %d", got)
	}
	// First tab on the bottom side is centred at 53 from x0=7
	if !strings.Contains(code, "G1 X56.000 Y7.000 F1000.000") {
		t.Error("expected cut to the start of the bottom tab")
	}
}

func TestGenerateSheet_TabsSkippedOnShortSides(t *testing.T) {
	s := newTestSettings()
	s.TabsPerSide = 4
	s.TabWidth = 10
	s.TabHeight = 2
	gen := New(s, 6)

	// 112 x 56 toolpath: bottom and top hold 4 tabs (80mm), sides do not
	tabs := gen.calculateTabs(112, 56)
	if len(tabs) != 8 {
		t.Fatalf("expected 8 tabs, got %d", len(tabs))
	}
	for _, tb := range tabs {
		if tb.side == 1 || tb.side == 3 {
			t.Errorf("unexpected tab on side %d", tb.side)
		}
	}
}

func TestGenerateSheet_Mach3Comments(t *testing.T) {
	s := newTestSettings()
	s.Profile = "Mach3"
	code := New(s, 6).GenerateSheet(newTestSheet())

	if !strings.Contains(code, "( Board 1: H1 (100.0 x 50.0))") {
		t.Error("expected parenthesised comments")
	}
	if !strings.Contains(code, "X7.0000") {
		t.Error("expected 4 decimal places")
	}
	if !strings.Contains(code, "G28 X0 Y0") || !strings.Contains(code, "M30") {
		t.Error("expected Mach3 end code")
	}
}

func TestGenerateSheet_RotatedBoard(t *testing.T) {
	sheet := newTestSheet()
	sheet.Placements[0].Rotated = true
	code := New(newTestSettings(), 6).GenerateSheet(sheet)

	if !strings.Contains(code, "[rotated]") {
		t.Error("expected rotated marker")
	}
	// 50 wide, 100 tall once rotated
	if !strings.Contains(code, "G1 X63.000 Y113.000") {
		t.Error("expected rotated perimeter corner")
	}
}

func TestGenerateAll(t *testing.T) {
	sheets := []Sheet{newTestSheet(), newTestSheet()}
	sheets[1].Index = 2
	codes := New(newTestSettings(), 6).GenerateAll(sheets)
	if len(codes) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(codes))
	}
	if !strings.Contains(codes[1], "sheet 2") {
		t.Error("second program should name sheet 2")
	}
}

func TestFormat_NoNegativeZero(t *testing.T) {
	gen := New(newTestSettings(), 6)
	if got := gen.format(-0.0001); got != "0.000" {
		t.Errorf("format(-0.0001) = %q, want 0.000", got)
	}
}

func TestGetGCodeProfile_Fallback(t *testing.T) {
	if p := model.GetGCodeProfile("nope"); p.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name)
	}
}
