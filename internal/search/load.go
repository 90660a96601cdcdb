package search

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSymbolsFile reads a JSON array of symbols, as produced by an external
// indexer, for bulk loading with Store.Index.
func LoadSymbolsFile(path string) ([]SymbolMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbols file: %w", err)
	}

	var symbols []SymbolMatch
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("parse symbols file %s: %w", path, err)
	}
	return symbols, nil
}
