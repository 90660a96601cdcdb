package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadSignature reads a signature from a .toml, .yaml, .yml or .json file.
func LoadSignature(path string) (*Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var s Signature
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, fmt.Errorf("failed to parse project file %s: %w", path, err)
		}
	case ".yaml", ".yml", ".json":
		// JSON is a subset of YAML.
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse project file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported project file extension: %s", path)
	}
	return &s, nil
}
