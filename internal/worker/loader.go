package worker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
)

// CatalogFile is the on-disk form of a custom worker catalog.
type CatalogFile struct {
	// InheritBuiltin starts from the built-in catalog; file entries with a
	// built-in key replace that entry.
	InheritBuiltin bool `yaml:"inherit_builtin"`

	Workers         []Spec              `yaml:"workers"`
	Recommendations map[string][]string `yaml:"recommendations"`
}

// LoadCatalog reads a YAML worker catalog and builds a registry from it.
// Every failure is a CONFIG-002 error.
func LoadCatalog(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigInvalidError(path, fmt.Errorf("failed to read worker catalog: %w", err))
	}

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewConfigInvalidError(path, fmt.Errorf("failed to parse worker catalog: %w", err))
	}

	specs := file.Workers
	recs := file.Recommendations
	if file.InheritBuiltin {
		specs = mergeSpecs(DefaultCatalog(), file.Workers)
		builtin := DefaultRecommendations()
		for k, v := range recs {
			builtin[k] = v
		}
		recs = builtin
	}

	r, err := NewRegistry(specs, recs)
	if err != nil {
		return nil, errors.NewConfigInvalidError(path, fmt.Errorf("invalid worker catalog: %w", err))
	}
	return r, nil
}

func mergeSpecs(base, overrides []Spec) []Spec {
	index := make(map[string]int, len(base))
	out := make([]Spec, len(base))
	copy(out, base)
	for i, s := range out {
		index[s.Key] = i
	}
	for _, s := range overrides {
		if i, ok := index[s.Key]; ok {
			out[i] = s
			continue
		}
		index[s.Key] = len(out)
		out = append(out, s)
	}
	return out
}
