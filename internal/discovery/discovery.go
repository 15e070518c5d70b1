// Package discovery locates the project's forts.toml so commands work from
// any subdirectory of a catalog checkout.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindUp walks up from cwd looking for a file called name.
// Returns "" if no such file exists up to the filesystem root.
func FindUp(name string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return FindUpFrom(cwd, name)
}

// FindUpFrom walks up from startDir looking for a regular file called name
// and returns its absolute path. Directories with that name are skipped.
func FindUpFrom(startDir, name string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
