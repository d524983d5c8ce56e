package resources

import (
	"fmt"
	"os"
)

// findResourceRoot returns the working directory resources are resolved
// against — chainguard derives a project's ID straight from cwd (or its
// git metadata), so unlike the teacher's sdd.json walk-up there is no
// marker file to search for.
func findResourceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return dir, nil
}
