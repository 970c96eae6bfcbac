// Package project persists application configuration, anneal profiles,
// solutions and backups on disk.
package project

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.cubbycut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cubbycut")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// DefaultDatabasePath returns where runs are stored when the config leaves
// DatabasePath empty.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultConfigDir(), "runs.db")
}

// isTOML reports whether path should be read and written as TOML.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// SaveAppConfig persists an AppConfig to the given path, as TOML when the
// extension is .toml and as JSON otherwise. It creates any missing parent
// directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := EncodeAppConfig(config, isTOML(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EncodeAppConfig renders config as TOML or indented JSON.
func EncodeAppConfig(config model.AppConfig, asTOML bool) ([]byte, error) {
	if !asTOML {
		return json.MarshalIndent(config, "", "  ")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadAppConfig reads an AppConfig from the given path. Fields missing from
// the file keep their defaults. If the file does not exist, it returns
// DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return model.AppConfig{}, err
	}
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &config); err != nil {
			return model.AppConfig{}, err
		}
	} else if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	// Ensure RecentFiles is never nil
	if config.RecentFiles == nil {
		config.RecentFiles = []string{}
	}
	return config, nil
}
