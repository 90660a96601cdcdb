// Package worker holds the catalog of specialized search workers and an
// immutable registry for looking them up.
package worker

import "slices"

// Category groups workers by the area of the codebase they inspect.
type Category string

const (
	CategoryStackDetection     Category = "stack_detection"
	CategoryTaskClassification Category = "task_classification"
	CategoryFrontend           Category = "frontend"
	CategoryBackend            Category = "backend"
	CategoryData               Category = "data"
	CategorySecurity           Category = "security"
	CategoryTesting            Category = "testing"
	CategoryInfrastructure     Category = "infrastructure"
	CategoryErrorAnalysis      Category = "error_analysis"
	CategoryDocumentation      Category = "documentation"
)

// Priority orders workers by how much their output usually matters.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Spec describes one worker: its prompt template and the workers whose
// output it needs first.
type Spec struct {
	Key             string   `yaml:"key" json:"key"`
	Description     string   `yaml:"description" json:"description"`
	Template        string   `yaml:"template" json:"template"`
	Category        Category `yaml:"category" json:"category"`
	Priority        Priority `yaml:"priority" json:"priority"`
	Dependencies    []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	ProvidesContext []string `yaml:"provides_context,omitempty" json:"provides_context,omitempty"`
}

// DependsOn reports whether key is a declared dependency of s.
func (s Spec) DependsOn(key string) bool {
	return slices.Contains(s.Dependencies, key)
}

func (s Spec) clone() Spec {
	s.Dependencies = slices.Clone(s.Dependencies)
	s.ProvidesContext = slices.Clone(s.ProvidesContext)
	return s
}
