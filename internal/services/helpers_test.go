package services

import (
	"path/filepath"
	"testing"

	"github.com/isdelr/estate-listing/internal/auth"
	"github.com/isdelr/estate-listing/internal/database"
	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fastHasher keeps PBKDF2 cheap in tests.
func fastHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(auth.AlgorithmPBKDF2, 1000)
}
