// Package security validates file system paths supplied on the command line.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CanonicalPath returns the absolute, symlink-resolved form of path. When path
// does not exist yet, the nearest existing parent is resolved and the
// remaining components are appended.
func CanonicalPath(path string) (string, error) {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved, nil
	}

	checkPath := absPath
	for {
		parentDir := filepath.Dir(checkPath)
		if parentDir == checkPath {
			return absPath, nil
		}
		if resolved, err := filepath.EvalSymlinks(parentDir); err == nil {
			relToParent, _ := filepath.Rel(parentDir, absPath)
			return filepath.Join(resolved, relToParent), nil
		}
		checkPath = parentDir
	}
}

// IsWithin reports whether path equals dir or lies below it. Both must be
// canonical.
func IsWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// ValidateOutputPath rejects an output that would overwrite its own input:
// the same file, a path inside an input frame directory, or a directory that
// contains the input.
func ValidateOutputPath(input, output string) error {
	in, err := CanonicalPath(input)
	if err != nil {
		return err
	}
	out, err := CanonicalPath(output)
	if err != nil {
		return err
	}
	if IsWithin(out, in) || IsWithin(in, out) {
		return fmt.Errorf("output %s would overwrite input %s", output, input)
	}
	return nil
}
