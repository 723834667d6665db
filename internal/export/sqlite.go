package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/foodsync/internal/fooddb"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS foods (
	zh TEXT PRIMARY KEY,
	en TEXT NOT NULL,
	cal TEXT NOT NULL,
	position INTEGER NOT NULL
)`
	deleteAll  = `DELETE FROM foods`
	insertFood = `INSERT INTO foods (zh, en, cal, position) VALUES (?, ?, ?, ?)`
)

// WriteSQLite replaces the contents of the foods table in the SQLite file at
// path with records.
func WriteSQLite(ctx context.Context, path string, records []fooddb.Record) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return WriteRecords(ctx, db, records)
}

// WriteRecords replaces the foods table contents inside one transaction.
// position keeps the record order of the JSON file.
func WriteRecords(ctx context.Context, db *sql.DB, records []fooddb.Record) error {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, deleteAll); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertFood)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Zh, rec.En, rec.Cal, i); err != nil {
			return fmt.Errorf("failed to insert %q: %w", rec.Zh, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
