// Package resolver validates and normalizes the source and destination paths
// of a run before any file is touched.
package resolver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Source resolves a source path to an absolute path and checks that it is
// the right kind for the run: a regular file in single mode, a directory in
// batch mode. Any failure here is fatal to the whole run.
func Source(path string, wantDir bool, logger *slog.Logger) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}

	if wantDir && !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	if !wantDir && info.IsDir() {
		return "", fmt.Errorf("%s is a directory, expected a file", abs)
	}

	logger.Info("resolved source", "input", path, "resolved", abs, "dir", wantDir)
	return abs, nil
}

// Dest resolves a destination path to an absolute path. The path does not
// have to exist yet, but if it does its kind must match: a directory in
// batch mode, a non-directory in single mode.
func Dest(path string, wantDir bool, logger *slog.Logger) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if info, err := os.Stat(abs); err == nil {
		if wantDir && !info.IsDir() {
			return "", fmt.Errorf("%s exists and is not a directory", abs)
		}
		if !wantDir && info.IsDir() {
			return "", fmt.Errorf("%s is a directory, expected a file path", abs)
		}
	}

	logger.Info("resolved destination", "input", path, "resolved", abs)
	return abs, nil
}
