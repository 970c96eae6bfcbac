package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/CubbyCut/internal/engine"
)

// SaveSolution writes a solution as indented JSON.
func SaveSolution(path string, sol *engine.Solution) error {
	data, err := json.MarshalIndent(sol, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal solution: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create solution directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	return nil
}

// LoadSolution reads a solution saved by SaveSolution. The layout and score
// are recomputed from the placements.
func LoadSolution(path string) (*engine.Solution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read solution: %w", err)
	}
	var sol engine.Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, fmt.Errorf("failed to parse solution: %w", err)
	}
	return &sol, nil
}
