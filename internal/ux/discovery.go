package ux

import (
	"os"
	"path/filepath"
)

// DirName is the per-project miow directory.
const DirName = ".miow"

// DiscoverMiowDir returns the nearest .miow directory at or above start,
// stopping at the git root. When none exists it returns start/.miow.
func DiscoverMiowDir(start string) string {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}

		// Stop at git root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Join(start, DirName)
}

// Paths are the default file locations under a .miow directory.
type Paths struct {
	Dir string
}

// DiscoverPaths resolves Paths from the working directory.
func DiscoverPaths() (Paths, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Paths{}, err
	}
	return Paths{Dir: DiscoverMiowDir(cwd)}, nil
}

func (p Paths) ConfigFile() string  { return filepath.Join(p.Dir, "config.yaml") }
func (p Paths) GraphDB() string     { return filepath.Join(p.Dir, "graph.db") }
func (p Paths) CatalogFile() string { return filepath.Join(p.Dir, "workers.yaml") }
func (p Paths) ProjectFile() string { return filepath.Join(p.Dir, "project.toml") }

// ProjectRoot is the directory containing the .miow directory.
func (p Paths) ProjectRoot() string { return filepath.Dir(p.Dir) }
