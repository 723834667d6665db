package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRotateBackup(t *testing.T) {
	tmpDir := t.TempDir()

	current := filepath.Join(tmpDir, "food_database.json")
	backup := filepath.Join(tmpDir, "food_database.backup.json")

	if err := os.WriteFile(current, []byte(`[{"zh":"蘋果"}]`), 0644); err != nil {
		t.Fatalf("Failed to create current file: %v", err)
	}

	rotated, err := RotateBackup(current, backup)
	if err != nil {
		t.Fatalf("RotateBackup failed: %v", err)
	}
	if !rotated {
		t.Error("Expected rotation to happen")
	}

	if _, err := os.Stat(current); !os.IsNotExist(err) {
		t.Error("Current file still exists after rotation")
	}

	content, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("Failed to read backup: %v", err)
	}
	if string(content) != `[{"zh":"蘋果"}]` {
		t.Errorf("Unexpected backup content: %s", content)
	}
}

func TestRotateBackup_ReplacesOldBackup(t *testing.T) {
	tmpDir := t.TempDir()

	current := filepath.Join(tmpDir, "db.json")
	backup := filepath.Join(tmpDir, "db.backup.json")

	if err := os.WriteFile(backup, []byte("old backup"), 0644); err != nil {
		t.Fatalf("Failed to create old backup: %v", err)
	}
	if err := os.WriteFile(current, []byte("current"), 0644); err != nil {
		t.Fatalf("Failed to create current file: %v", err)
	}

	if _, err := RotateBackup(current, backup); err != nil {
		t.Fatalf("RotateBackup failed: %v", err)
	}

	content, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("Failed to read backup: %v", err)
	}
	if string(content) != "current" {
		t.Errorf("Expected backup to hold the current content, got %q", content)
	}

	// Only a single generation is kept
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 file after rotation, got %d", len(entries))
	}
}

func TestRotateBackup_MissingCurrent(t *testing.T) {
	tmpDir := t.TempDir()
	backup := filepath.Join(tmpDir, "db.backup.json")

	if err := os.WriteFile(backup, []byte("keep me"), 0644); err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	rotated, err := RotateBackup(filepath.Join(tmpDir, "missing.json"), backup)
	if err != nil {
		t.Fatalf("Expected no error for missing current file, got %v", err)
	}
	if rotated {
		t.Error("Expected no rotation for missing current file")
	}

	content, _ := os.ReadFile(backup)
	if string(content) != "keep me" {
		t.Error("Existing backup was touched although nothing was rotated")
	}
}

func TestRotateBackup_CreatesBackupDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	current := filepath.Join(tmpDir, "db.json")
	backup := filepath.Join(tmpDir, "backups", "nested", "db.json")

	if err := os.WriteFile(current, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to create current file: %v", err)
	}

	if _, err := RotateBackup(current, backup); err != nil {
		t.Fatalf("RotateBackup failed: %v", err)
	}

	if _, err := os.Stat(backup); err != nil {
		t.Errorf("Backup not created in nested directory: %v", err)
	}
}
