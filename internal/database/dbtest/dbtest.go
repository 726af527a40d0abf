// Package dbtest opens throwaway databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Paul-Starodub/fast-library/internal/config"
	"github.com/Paul-Starodub/fast-library/internal/database"
)

// Open returns a migrated sqlite database stored in t.TempDir(). It is closed
// when the test finishes.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSilentDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}
