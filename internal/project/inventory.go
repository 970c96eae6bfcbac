package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// DefaultInventoryPath returns the default file path for the tool and sheet inventory.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv model.Inventory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadInventory reads the inventory at path, or returns the default
// inventory if the file does not exist.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultInventory(), nil
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, fmt.Errorf("failed to parse inventory: %w", err)
	}
	return inv, nil
}

// ImportInventory merges the inventory file at path into existing. Entries
// replace existing ones of the same name (ignoring case); others are appended.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, fmt.Errorf("failed to parse inventory: %w", err)
	}

	for _, t := range imported.Tools {
		if t.Name == "" {
			return existing, errors.New("imported tool has no name")
		}
		if i := indexByName(len(existing.Tools), func(i int) string { return existing.Tools[i].Name }, t.Name); i >= 0 {
			existing.Tools[i] = t
		} else {
			existing.Tools = append(existing.Tools, t)
		}
	}
	for _, s := range imported.Sheets {
		if s.Name == "" {
			return existing, errors.New("imported sheet has no name")
		}
		if i := indexByName(len(existing.Sheets), func(i int) string { return existing.Sheets[i].Name }, s.Name); i >= 0 {
			existing.Sheets[i] = s
		} else {
			existing.Sheets = append(existing.Sheets, s)
		}
	}
	return existing, nil
}

func indexByName(n int, nameAt func(int) string, name string) int {
	for i := 0; i < n; i++ {
		if strings.EqualFold(nameAt(i), name) {
			return i
		}
	}
	return -1
}
