// Package config loads and saves the persisted conversion settings.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"webpcbz/internal/convert"
)

// DefaultFileName is the settings file kept in the user's home directory.
// The JSON keys match the config file of the desktop tool this replaces, so
// an existing file keeps working.
const DefaultFileName = ".webpcbz_config.json"

// Settings holds all persisted options.
type Settings struct {
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
	Effort        int    `json:"webp_method"`
	SaveAsCBZ     bool   `json:"save_as_cbz"`
	ResizeEnabled bool   `json:"resize_enabled"`
	MaxSize       int    `json:"max_size"`
	Recursive     bool   `json:"recursive"`
	Workers       int    `json:"workers"`
	OutputDir     string `json:"output_dir"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Quality:   90,
		Lossless:  false,
		Effort:    4,
		SaveAsCBZ: true,
		MaxSize:   1920,
		Workers:   runtime.NumCPU(),
	}
}

// DefaultPath returns the settings path in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToOptions converts settings to conversion options.
func (s *Settings) ToOptions() convert.Options {
	maxDim := 0
	if s.ResizeEnabled {
		maxDim = s.MaxSize
	}
	return convert.Options{
		Quality:      s.Quality,
		Lossless:     s.Lossless,
		Effort:       s.Effort,
		MaxDimension: maxDim,
	}
}

// ToPipelineConfig converts settings to a batch pipeline configuration.
func (s *Settings) ToPipelineConfig() convert.PipelineConfig {
	return convert.PipelineConfig{
		Options:   s.ToOptions(),
		Workers:   s.Workers,
		SaveAsCBZ: s.SaveAsCBZ,
		Recursive: s.Recursive,
		OutputDir: s.OutputDir,
	}
}
