package migration_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/mohammadpnp/user-pipeline/internal/application/migration"
	appuser "github.com/mohammadpnp/user-pipeline/internal/application/user"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db/models"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/dedup"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/repository"
	"github.com/mohammadpnp/user-pipeline/internal/logging"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	legacyDB *gorm.DB
	users    *repository.UserRepository
	legacy   *repository.LegacyUserRepository
	state    *repository.MigrationStateRepository
	index    *dedup.MemoryIndex
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	newDB, err := db.Open(db.DriverSQLite, filepath.Join(dir, "new.db"))
	require.NoError(t, err)
	require.NoError(t, db.MigrateNewStore(newDB))

	legacyDB, err := db.Open(db.DriverSQLite, filepath.Join(dir, "legacy.db"))
	require.NoError(t, err)
	require.NoError(t, db.MigrateLegacyStore(legacyDB))

	t.Cleanup(func() {
		for _, gdb := range []*gorm.DB{newDB, legacyDB} {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	})

	users := repository.NewUserRepository(newDB)
	return &harness{
		legacyDB: legacyDB,
		users:    users,
		legacy:   repository.NewLegacyUserRepository(legacyDB),
		state:    repository.NewMigrationStateRepository(newDB),
		index:    dedup.NewMemoryIndex(users),
	}
}

// seedLegacy inserts n valid legacy users user0..user(n-1).
func (h *harness) seedLegacy(t *testing.T, n int) []models.LegacyUser {
	t.Helper()
	rows := make([]models.LegacyUser, 0, n)
	for i := range n {
		rows = append(rows, models.LegacyUser{
			Name:   fmt.Sprintf("User %d", i),
			Email:  fmt.Sprintf("User%d@Example.com", i),
			Phone:  "555-123-4567",
			Gender: "other",
		})
	}
	h.addLegacy(t, rows...)
	return rows
}

func (h *harness) addLegacy(t *testing.T, rows ...models.LegacyUser) {
	t.Helper()
	for i := range rows {
		require.NoError(t, h.legacyDB.Create(&rows[i]).Error)
	}
}

func (h *harness) bulk(writer domain.BatchWriter, batchSize int) migration.BulkMigrate {
	if writer == nil {
		writer = h.users
	}
	return migration.NewBulkMigrate(
		h.legacy, h.users, writer, h.index, h.state,
		domain.DefaultValidator(), nil, logging.Nop(),
		migration.BulkConfig{BatchSize: batchSize},
	)
}

func (h *harness) progress() *migration.Progress {
	return migration.NewProgress(h.legacy, h.users, h.state, 4, 50)
}

func (h *harness) migrateUser() migration.MigrateUser {
	writer := appuser.NewRecordWriter(domain.DefaultValidator(), h.index, h.users, logging.Nop())
	return migration.NewMigrateUser(h.legacy, writer, nil)
}

// flakyWriter delegates to next until failOn calls have been made, then
// either fails or runs hook before delegating.
type flakyWriter struct {
	next   domain.BatchWriter
	failOn int32
	hook   func()
	calls  atomic.Int32
}

func (w *flakyWriter) InsertBatch(ctx context.Context, runID string, users []domain.User) ([]domain.User, error) {
	n := w.calls.Add(1)
	if n == w.failOn {
		if w.hook != nil {
			w.hook()
			return w.next.InsertBatch(ctx, runID, users)
		}
		return nil, fmt.Errorf("connection reset by peer")
	}
	return w.next.InsertBatch(ctx, runID, users)
}
