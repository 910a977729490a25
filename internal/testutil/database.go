// Package testutil provides shared fixtures for package tests: a migrated
// on-disk database and sheet grids shaped like the real export.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/phone-manager/internal/model"
	"github.com/Veraticus/phone-manager/internal/storage"
)

// SheetHeader is the header row of the forwarded-SMS sheet.
var SheetHeader = model.RawRow{"Date", "Institution", "", "Message", "Device"}

// SetupTestDB creates a fully migrated SQLite database inside t.TempDir().
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// Grid builds a sheet grid with the standard header.
func Grid(rows ...model.RawRow) model.Grid {
	return model.Grid{Header: SheetHeader, Rows: rows}
}

// Row builds a sheet row from its meaningful cells, leaving the unused
// third column empty.
func Row(date, institution, content, device string) model.RawRow {
	return model.RawRow{date, institution, "", content, device}
}
