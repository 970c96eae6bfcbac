package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CubbyCut/internal/model"
)

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	fast := model.DefaultAnnealSettings()
	fast.NumStarts = 2
	profiles := []model.AnnealProfile{
		{Name: "fast", Description: "Two starts", Anneal: fast, IsBuiltIn: true},
		{Name: "hot", Anneal: model.AnnealSettings{Temperature: 5000, CoolingRate: 0.9}},
	}

	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles failed: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].IsBuiltIn {
		t.Error("loaded profiles must not be marked built-in")
	}
	if loaded[0].Anneal.NumStarts != 2 {
		t.Errorf("expected NumStarts=2, got %d", loaded[0].Anneal.NumStarts)
	}
	if loaded[1].Anneal.Temperature != 5000 {
		t.Errorf("expected Temperature=5000, got %f", loaded[1].Anneal.Temperature)
	}
}

func TestLoadCustomProfilesMissingFile(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", profiles)
	}
}

func TestAllProfilesShadowsBuiltIns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	custom := model.DefaultAnnealSettings()
	custom.NumStarts = 1
	if err := SaveCustomProfiles(path, []model.AnnealProfile{{Name: "Quick", Anneal: custom}}); err != nil {
		t.Fatal(err)
	}

	all, err := AllProfiles(path)
	if err != nil {
		t.Fatalf("AllProfiles failed: %v", err)
	}
	if len(all) != len(model.BuiltInProfiles()) {
		t.Fatalf("expected %d profiles, got %d", len(model.BuiltInProfiles()), len(all))
	}
	quick, ok := model.FindProfile(all, "quick")
	if !ok {
		t.Fatal("quick profile missing")
	}
	if quick.IsBuiltIn || quick.Anneal.NumStarts != 1 {
		t.Errorf("expected the custom quick profile, got %+v", quick)
	}
}

func TestImportProfile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"name":"night","is_built_in":true,"anneal":{"num_starts":30}}`), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := ImportProfile(good)
	if err != nil {
		t.Fatalf("ImportProfile failed: %v", err)
	}
	if p.Name != "night" || p.IsBuiltIn || p.Anneal.NumStarts != 30 {
		t.Errorf("unexpected profile %+v", p)
	}

	nameless := filepath.Join(dir, "nameless.json")
	if err := os.WriteFile(nameless, []byte(`{"anneal":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(nameless); err == nil {
		t.Error("expected error for profile without a name")
	}
}
