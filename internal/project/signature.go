// Package project describes the codebase being queried: language,
// framework and notable libraries.
package project

import (
	"fmt"
	"strings"
)

// Signature is a short description of a project's stack.
type Signature struct {
	Language          string            `json:"language" yaml:"language" toml:"language"`
	Framework         string            `json:"framework" yaml:"framework" toml:"framework"`
	PackageManager    string            `json:"package_manager" yaml:"package_manager" toml:"package_manager"`
	UILibrary         string            `json:"ui_library,omitempty" yaml:"ui_library,omitempty" toml:"ui_library"`
	ValidationLibrary string            `json:"validation_library,omitempty" yaml:"validation_library,omitempty" toml:"validation_library"`
	AuthLibrary       string            `json:"auth_library,omitempty" yaml:"auth_library,omitempty" toml:"auth_library"`
	Styling           []string          `json:"styling,omitempty" yaml:"styling,omitempty" toml:"styling"`
	Features          []string          `json:"features,omitempty" yaml:"features,omitempty" toml:"features"`
	Dependencies      map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies"`
}

// ToDescription renders the signature as
// "Language: x, Framework: y, Package Manager: z, UI Library: u, Validation: v",
// omitting empty fields.
func (s *Signature) ToDescription() string {
	if s == nil {
		return ""
	}
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", label, value))
		}
	}
	add("Language", s.Language)
	add("Framework", s.Framework)
	add("Package Manager", s.PackageManager)
	add("UI Library", s.UILibrary)
	add("Validation", s.ValidationLibrary)
	return strings.Join(parts, ", ")
}

// QuestionTemplate is a stack-specific question with the search query
// that answers it.
type QuestionTemplate struct {
	Question     string
	SearchQuery  string
	ExpectedType string
}

// QuestionTemplates returns generic questions suited to the stack, used
// when the model cannot generate any.
func (s *Signature) QuestionTemplates() []QuestionTemplate {
	var qs []QuestionTemplate
	add := func(question, query, kind string) {
		qs = append(qs, QuestionTemplate{Question: question, SearchQuery: query, ExpectedType: kind})
	}
	switch s.Language {
	case "typescript", "javascript":
		add("What React components are used for UI?", "export function", "component")
		add("What TypeScript types are defined?", "interface", "type")
		add("What utility functions are available?", "export const", "function")
	case "rust":
		add("What structs and enums are defined?", "struct", "type")
		add("What functions are available?", "fn", "function")
		add("What traits are implemented?", "impl", "type")
	case "go":
		add("What structs and interfaces are defined?", "type", "type")
		add("What exported functions are available?", "func", "function")
	case "python":
		add("What classes are defined?", "class", "type")
		add("What functions are available?", "def", "function")
		add("What modules are imported?", "import", "constant")
	default:
		add("What components are available?", "component", "component")
		add("What types are defined?", "type", "type")
	}

	if strings.Contains(s.Framework, "React") {
		add("What React hooks are used?", "use", "function")
	}
	if strings.Contains(s.Framework, "Next.js") {
		add("What Next.js pages or API routes exist?", "page", "component")
	}
	if s.ValidationLibrary == "Zod" {
		add("What Zod schemas are defined?", "z.object", "schema")
	}
	return qs
}
