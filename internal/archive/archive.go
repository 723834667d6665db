package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// RotateBackup moves the current database file to the backup path, replacing
// any previous backup. It reports whether a rotation took place; a missing
// current file is not an error.
func RotateBackup(currentPath, backupPath string) (bool, error) {
	// Check if current file exists
	if _, err := os.Stat(currentPath); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", currentPath, err)
	}

	// Create backup directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Only one generation is kept
	if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to remove old backup: %w", err)
	}

	if err := os.Rename(currentPath, backupPath); err != nil {
		return false, fmt.Errorf("failed to back up %s: %w", currentPath, err)
	}

	return true, nil
}
