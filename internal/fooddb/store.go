package fooddb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"codeberg.org/snonux/foodsync/internal/archive"
)

// Store reads and writes the record set at a fixed path with a fixed backup.
type Store struct {
	Path       string
	BackupPath string
}

// NewStore creates a store for the given database and backup paths.
func NewStore(path, backupPath string) *Store {
	return &Store{Path: path, BackupPath: backupPath}
}

// Load reads the persisted record set. A missing file yields an empty set.
func (s *Store) Load() ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode database %s: %w", s.Path, err)
	}

	return records, nil
}

// Save persists records. The encoded payload is staged next to the target
// first; only then is the current file rotated into the backup slot and the
// staged file moved into place. It reports whether a backup was made.
func (s *Store) Save(records []Record) (bool, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return false, err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create database directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".food_database-*.json")
	if err != nil {
		return false, fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return false, fmt.Errorf("failed to set permissions: %w", err)
	}

	backedUp, err := archive.RotateBackup(s.Path, s.BackupPath)
	if err != nil {
		return false, err
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return backedUp, fmt.Errorf("failed to write database: %w", err)
	}

	return backedUp, nil
}

// Encode writes records as an indented JSON array with non-ASCII text kept
// literal.
func Encode(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode database: %w", err)
	}
	return nil
}
