package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 2; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
	}

	var tables []string
	if err := db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'properties', 'events') ORDER BY name`); err != nil {
		t.Fatalf("list tables: %v", err)
	}
	if len(tables) != 3 || tables[0] != "events" || tables[1] != "properties" || tables[2] != "users" {
		t.Fatalf("tables = %v", tables)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	insert := `INSERT INTO users (email, password) VALUES (?, ?)`
	if _, err := db.Exec(insert, "a@x.com", "h"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.Exec(insert, "a@x.com", "h")
	if err == nil {
		t.Fatal("duplicate insert succeeded")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("IsUniqueViolation(%v) = false", err)
	}
	if IsUniqueViolation(errors.New("other")) {
		t.Fatal("plain error reported as unique violation")
	}
}
