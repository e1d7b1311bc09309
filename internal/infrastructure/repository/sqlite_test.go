package repository_test

import (
	"path/filepath"
	"testing"

	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openNewStore(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	require.NoError(t, db.MigrateNewStore(gdb))
	closeOnCleanup(t, gdb)
	return gdb
}

func openLegacyStore(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "legacy.db"))
	require.NoError(t, err)
	require.NoError(t, db.MigrateLegacyStore(gdb))
	closeOnCleanup(t, gdb)
	return gdb
}

func closeOnCleanup(t *testing.T, gdb *gorm.DB) {
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
}
