package model

import "strings"

// AnnealProfile is a named annealing preset.
type AnnealProfile struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Anneal      AnnealSettings `json:"anneal"`
	IsBuiltIn   bool           `json:"is_built_in"`
}

// BuiltInProfiles returns the presets shipped with the application.
func BuiltInProfiles() []AnnealProfile {
	quick := DefaultAnnealSettings()
	quick.NumStarts = 3
	quick.MaxIterations = 300
	quick.MaxRefineAttempts = 4

	thorough := DefaultAnnealSettings()
	thorough.NumStarts = 20
	thorough.MaxIterations = 3000
	thorough.CoolingRate = 0.99
	thorough.MaxRefineAttempts = 12

	return []AnnealProfile{
		{Name: "quick", Description: "Few short starts for previews", Anneal: quick, IsBuiltIn: true},
		{Name: "balanced", Description: "Default schedule", Anneal: DefaultAnnealSettings(), IsBuiltIn: true},
		{Name: "thorough", Description: "Many long starts with slow cooling", Anneal: thorough, IsBuiltIn: true},
	}
}

// FindProfile looks a profile up by case-insensitive name.
func FindProfile(profiles []AnnealProfile, name string) (AnnealProfile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return AnnealProfile{}, false
}
