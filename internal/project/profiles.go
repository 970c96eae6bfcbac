package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// DefaultProfilesPath returns the default file path for custom anneal profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.AnnealProfile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.AnnealProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.AnnealProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.AnnealProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}

	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// AllProfiles returns the built-in profiles followed by the custom ones at
// path. Custom profiles shadow built-ins of the same name.
func AllProfiles(path string) ([]model.AnnealProfile, error) {
	custom, err := LoadCustomProfiles(path)
	if err != nil {
		return nil, err
	}
	var out []model.AnnealProfile
	for _, p := range model.BuiltInProfiles() {
		if _, shadowed := model.FindProfile(custom, p.Name); !shadowed {
			out = append(out, p)
		}
	}
	return append(out, custom...), nil
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.AnnealProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.AnnealProfile{}, err
	}

	var profile model.AnnealProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.AnnealProfile{}, err
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.AnnealProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
