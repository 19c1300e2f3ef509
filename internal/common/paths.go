package common

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePath turns a caller-supplied path into a clean absolute directory.
// A path naming a file resolves to the file's directory.
func ResolvePath(path string) (string, error) {
	if path == "" {
		path = "."
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	return abs, nil
}

// Ancestors returns dir followed by each of its parents up to the filesystem root
func Ancestors(dir string) []string {
	dirs := []string{dir}
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return dirs
		}
		dirs = append(dirs, parent)
		dir = parent
	}
}
