package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CubbyCut/internal/model"
)

func TestDefaultInventoryPath(t *testing.T) {
	path := DefaultInventoryPath()
	if filepath.Base(path) != "inventory.json" {
		t.Errorf("expected filename inventory.json, got %s", filepath.Base(path))
	}
}

func TestLoadInventoryMissingFile(t *testing.T) {
	inv, err := LoadInventory(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(inv.Tools) != len(model.DefaultInventory().Tools) {
		t.Errorf("expected default tools, got %d", len(inv.Tools))
	}
}

func TestSaveAndLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "inventory.json")
	inv := model.Inventory{
		Tools:  []model.ToolProfile{model.NewToolProfile("Test Mill", 6.0, 1500, 500, 18000, 6.0)},
		Sheets: []model.SheetPreset{model.NewSheetPreset("Test Plywood", 2440, 1220, 18, "Plywood")},
	}
	if err := SaveInventory(path, inv); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}

	loaded, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(loaded.Tools) != 1 || loaded.Tools[0] != inv.Tools[0] {
		t.Errorf("tools not round-tripped: %+v", loaded.Tools)
	}
	if len(loaded.Sheets) != 1 || loaded.Sheets[0] != inv.Sheets[0] {
		t.Errorf("sheets not round-tripped: %+v", loaded.Sheets)
	}
}

func TestLoadInventoryInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	if err := os.WriteFile(path, []byte("{tools"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadInventory(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestImportInventoryMerges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.json")
	extra := model.Inventory{
		Tools: []model.ToolProfile{
			model.NewToolProfile("6MM END MILL", 6.0, 2000, 600, 16000, 4.0),
			model.NewToolProfile("Compression 8mm", 8.0, 2500, 700, 18000, 9.0),
		},
		Sheets: []model.SheetPreset{model.NewSheetPreset("Birch 1525x1525", 1525, 1525, 15, "Plywood")},
	}
	if err := SaveInventory(path, extra); err != nil {
		t.Fatal(err)
	}

	base := model.DefaultInventory()
	merged, err := ImportInventory(path, base)
	if err != nil {
		t.Fatalf("ImportInventory failed: %v", err)
	}
	if len(merged.Tools) != len(model.DefaultInventory().Tools)+1 {
		t.Errorf("expected one new tool, got %d tools", len(merged.Tools))
	}
	if tp := merged.FindTool("6mm end mill"); tp == nil || tp.FeedRate != 2000 {
		t.Errorf("expected the 6mm end mill to be replaced, got %+v", tp)
	}
	if merged.FindSheet("birch") == nil {
		t.Error("expected the birch sheet to be added")
	}
}

func TestImportInventoryRejectsUnnamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"tools":[{"tool_diameter":6}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportInventory(path, model.DefaultInventory()); err == nil {
		t.Error("expected error for a tool without a name")
	}
}
