// Package staging manages per-run working directories. Each stage stages its
// files under a directory keyed by output class, set, and language; the
// creating stage owns the directory and removes it when the pair finishes or
// fails. Stale directories left by crashed runs are swept at startup.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"cardpress/internal/fileutil"
)

// Dir returns the staging directory for one (outputClass, setID, language)
// triple without creating it.
func Dir(stagingRoot, outputClass, setID, language string) string {
	return filepath.Join(stagingRoot, fmt.Sprintf("%s.%s.%s", outputClass, setID, language))
}

// Create makes a fresh staging directory for the triple, clearing any
// leftover content from a previous run.
func Create(stagingRoot, outputClass, setID, language string) (string, error) {
	dir := Dir(stagingRoot, outputClass, setID, language)
	if err := fileutil.ResetDir(dir); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	return dir, nil
}

// Remove deletes the staging directory for the triple.
func Remove(stagingRoot, outputClass, setID, language string) error {
	dir := Dir(stagingRoot, outputClass, setID, language)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove staging directory: %w", err)
	}
	return nil
}
