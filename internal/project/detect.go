package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// indicator maps a dependency name to the library it reveals.
type indicator struct {
	dep  string
	name string
}

var (
	uiIndicators = []indicator{
		{"@shadcn/ui", "shadcn/ui"},
		{"@headlessui/react", "Headless UI"},
		{"@radix-ui/react-slot", "Radix UI"},
		{"@mantine/core", "Mantine"},
		{"@chakra-ui/react", "Chakra UI"},
		{"antd", "Ant Design"},
		{"@mui/material", "Material-UI"},
	}
	validationIndicators = []indicator{
		{"zod", "Zod"},
		{"yup", "Yup"},
		{"joi", "Joi"},
		{"class-validator", "Class Validator"},
		{"validator", "go-playground/validator"},
		{"pydantic", "Pydantic"},
	}
	authIndicators = []indicator{
		{"next-auth", "NextAuth.js"},
		{"@auth0/auth0-react", "Auth0"},
		{"@supabase/auth-helpers-nextjs", "Supabase Auth"},
		{"firebase", "Firebase Auth"},
		{"jsonwebtoken", "JWT"},
		{"jwt", "JWT"},
	}
	stylingIndicators = []indicator{
		{"tailwindcss", "Tailwind CSS"},
		{"styled-components", "Styled Components"},
		{"@emotion/react", "Emotion"},
		{"sass", "Sass/SCSS"},
	}
)

// Detect inspects marker files in root and returns the project signature.
// Missing or unreadable manifests leave the corresponding fields empty.
func Detect(root string) (*Signature, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	s := &Signature{Dependencies: map[string]string{}}
	switch {
	case exists(root, "package.json"):
		detectNode(root, s)
	case exists(root, "go.mod"):
		detectGo(root, s)
	case exists(root, "Cargo.toml"):
		detectRust(root, s)
	case exists(root, "pyproject.toml"), exists(root, "requirements.txt"), exists(root, "Pipfile"):
		detectPython(root, s)
	default:
		s.Language = "unknown"
	}

	s.UILibrary = firstMatch(uiIndicators, s.Dependencies)
	s.ValidationLibrary = firstMatch(validationIndicators, s.Dependencies)
	s.AuthLibrary = firstMatch(authIndicators, s.Dependencies)
	for _, ind := range stylingIndicators {
		if _, ok := s.Dependencies[ind.dep]; ok {
			s.Styling = append(s.Styling, ind.name)
		}
	}
	if exists(root, "tailwind.config.js") && !contains(s.Styling, "Tailwind CSS") {
		s.Styling = append(s.Styling, "Tailwind CSS")
	}
	s.Features = features(root, s)

	if len(s.Dependencies) == 0 {
		s.Dependencies = nil
	}
	return s, nil
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func detectNode(root string, s *Signature) {
	s.PackageManager = "npm"
	switch {
	case exists(root, "pnpm-lock.yaml"):
		s.PackageManager = "pnpm"
	case exists(root, "yarn.lock"):
		s.PackageManager = "yarn"
	}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg packageJSON
		if json.Unmarshal(data, &pkg) == nil {
			for k, v := range pkg.DevDependencies {
				s.Dependencies[k] = v
			}
			for k, v := range pkg.Dependencies {
				s.Dependencies[k] = v
			}
		}
	}

	s.Language = "javascript"
	if _, ok := s.Dependencies["typescript"]; ok || exists(root, "tsconfig.json") {
		s.Language = "typescript"
	}

	_, hasNext := s.Dependencies["next"]
	_, hasReact := s.Dependencies["react"]
	_, hasVue := s.Dependencies["vue"]
	_, hasExpress := s.Dependencies["express"]
	switch {
	case hasNext || exists(root, "next.config.js") || exists(root, "next.config.mjs"):
		s.Framework = "Next.js"
	case exists(root, "vite.config.ts") && hasReact:
		s.Framework = "Vite + React"
	case hasReact:
		s.Framework = "React"
	case hasVue:
		s.Framework = "Vue"
	case hasExpress:
		s.Framework = "Express"
	}
}

func detectGo(root string, s *Signature) {
	s.Language = "go"
	s.PackageManager = "go"

	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "require "))
		if len(fields) < 2 || !strings.Contains(fields[0], "/") || strings.HasPrefix(fields[0], "//") {
			continue
		}
		s.Dependencies[fields[0]] = fields[1]
		if base := filepath.Base(fields[0]); strings.HasPrefix(base, "v") && len(base) <= 3 {
			// github.com/go-playground/validator/v10 -> validator
			s.Dependencies[filepath.Base(filepath.Dir(fields[0]))] = fields[1]
		} else {
			s.Dependencies[base] = fields[1]
		}
	}

	frameworks := []indicator{
		{"github.com/gin-gonic/gin", "Gin"},
		{"github.com/gofiber/fiber/v2", "Fiber"},
		{"github.com/labstack/echo/v4", "Echo"},
		{"github.com/go-chi/chi/v5", "Chi"},
		{"github.com/spf13/cobra", "Cobra CLI"},
	}
	s.Framework = firstMatch(frameworks, s.Dependencies)
}

type cargoManifest struct {
	Dependencies map[string]any `toml:"dependencies"`
}

func detectRust(root string, s *Signature) {
	s.Language = "rust"
	s.PackageManager = "cargo"

	var m cargoManifest
	if _, err := toml.DecodeFile(filepath.Join(root, "Cargo.toml"), &m); err != nil {
		return
	}
	for name, v := range m.Dependencies {
		s.Dependencies[name] = cargoVersion(v)
	}

	s.Framework = "Rust CLI"
	for _, web := range []string{"axum", "actix-web", "rocket", "warp"} {
		if _, ok := s.Dependencies[web]; ok {
			s.Framework = "Rust Web"
			break
		}
	}
}

// cargoVersion accepts both `dep = "1"` and `dep = { version = "1" }`.
func cargoVersion(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["version"].(string); ok {
			return s
		}
	}
	return ""
}

type pyproject struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func detectPython(root string, s *Signature) {
	s.Language = "python"
	s.PackageManager = "pip"

	if exists(root, "pyproject.toml") {
		var p pyproject
		if _, err := toml.DecodeFile(filepath.Join(root, "pyproject.toml"), &p); err == nil {
			for _, req := range p.Project.Dependencies {
				name, version := splitRequirement(req)
				s.Dependencies[name] = version
			}
			if len(p.Tool.Poetry.Dependencies) > 0 {
				s.PackageManager = "poetry"
			}
			for name, v := range p.Tool.Poetry.Dependencies {
				s.Dependencies[strings.ToLower(name)] = cargoVersion(v)
			}
		}
	}
	if data, err := os.ReadFile(filepath.Join(root, "requirements.txt")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			name, version := splitRequirement(line)
			s.Dependencies[name] = version
		}
	}

	for _, fw := range []indicator{{"django", "Django"}, {"fastapi", "FastAPI"}, {"flask", "Flask"}} {
		if _, ok := s.Dependencies[fw.dep]; ok {
			s.Framework = fw.name
			break
		}
	}
}

// splitRequirement splits "fastapi>=0.100" into "fastapi" and ">=0.100".
func splitRequirement(req string) (string, string) {
	i := strings.IndexAny(req, "<>=!~;[ ")
	if i < 0 {
		return strings.ToLower(req), ""
	}
	return strings.ToLower(strings.TrimSpace(req[:i])), strings.TrimSpace(req[i:])
}

func features(root string, s *Signature) []string {
	var out []string
	if s.Language == "typescript" {
		out = append(out, "TypeScript")
	}
	switch s.Framework {
	case "Next.js":
		out = append(out, "Server-Side Rendering")
		if exists(root, "app") {
			out = append(out, "App Router")
		} else if exists(root, "pages") {
			out = append(out, "Pages Router")
		}
	case "React", "Vite + React":
		out = append(out, "Client-Side Rendering")
	}
	if s.UILibrary != "" {
		out = append(out, "UI: "+s.UILibrary)
	}
	if s.ValidationLibrary != "" {
		out = append(out, "Validation: "+s.ValidationLibrary)
	}
	if s.AuthLibrary != "" {
		out = append(out, "Auth: "+s.AuthLibrary)
	}
	for _, style := range s.Styling {
		out = append(out, "Styling: "+style)
	}
	return out
}

func firstMatch(indicators []indicator, deps map[string]string) string {
	for _, ind := range indicators {
		if _, ok := deps[ind.dep]; ok {
			return ind.name
		}
	}
	return ""
}

func exists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
