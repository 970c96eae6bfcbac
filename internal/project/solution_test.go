package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/piwi3910/CubbyCut/internal/model"
)

func TestSaveAndLoadSolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "kitchen.json")
	sol := testSolution(t)

	if err := SaveSolution(path, sol); err != nil {
		t.Fatalf("SaveSolution failed: %v", err)
	}
	loaded, err := LoadSolution(path)
	if err != nil {
		t.Fatalf("LoadSolution failed: %v", err)
	}

	if loaded.Score != sol.Score || loaded.Valid != sol.Valid {
		t.Errorf("score/valid changed: %d/%t vs %d/%t", loaded.Score, loaded.Valid, sol.Score, sol.Valid)
	}
	if diff := cmp.Diff(sol.Layout, loaded.Layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	opts := cmpopts.IgnoreFields(model.Shape{}, "ID")
	for i := range sol.Placements {
		if diff := cmp.Diff(sol.Placements[i].Shape, loaded.Placements[i].Shape, opts); diff != "" {
			t.Errorf("shape %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestLoadSolutionErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSolution(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"shapes":[{"data":{"highResShape":[],"title":"x"}}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSolution(bad); err == nil {
		t.Error("expected error for empty shape")
	}
}
