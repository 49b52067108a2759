package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Load reads a YAML settings file and overlays it onto the defaults.
// Keys missing from the file keep their default value.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("could not read settings file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings on top of the defaults and validates the result.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("could not unmarshal settings yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
