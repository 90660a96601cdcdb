package plan

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadPlan reads a SearchPlan from a JSON file
func LoadPlan(path string) (*SearchPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	var p SearchPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	p.Normalize()

	if p.IsEmpty() {
		return nil, fmt.Errorf("plan file %s is empty", path)
	}

	return &p, nil
}

// SavePlan writes a SearchPlan to a JSON file
func SavePlan(p *SearchPlan, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write plan file: %w", err)
	}

	return nil
}
