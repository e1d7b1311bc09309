package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db/models"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyUserRepositoryPaging(t *testing.T) {
	ctx := context.Background()
	gdb := openLegacyStore(t)

	for i := 1; i <= 5; i++ {
		row := models.LegacyUser{
			Name:  fmt.Sprintf("User %d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
			Phone: "5551112222",
		}
		require.NoError(t, gdb.Create(&row).Error)
	}
	repo := repository.NewLegacyUserRepository(gdb)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	page, err := repo.ListAfter(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.EqualValues(t, 1, page[0].ID)
	assert.EqualValues(t, 2, page[1].ID)

	page, err = repo.ListAfter(ctx, page[1].ID, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "user5@example.com", page[2].Email)

	page, err = repo.ListAfter(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	got, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "User 3", got.Name)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrLegacyUserNotFound)
}

func TestLegacyUserRepositoryIgnoresUnmappedColumns(t *testing.T) {
	ctx := context.Background()
	gdb, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "legacy.db"))
	require.NoError(t, err)
	closeOnCleanup(t, gdb)

	require.NoError(t, gdb.Exec(`CREATE TABLE legacy_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT, email TEXT, phone TEXT, gender TEXT,
		address TEXT, dob TEXT, created_at DATETIME
	)`).Error)
	require.NoError(t, gdb.Exec(
		`INSERT INTO legacy_users (name, email, phone, gender, address, dob) VALUES (?, ?, ?, ?, ?, ?)`,
		"Dana", "dana@example.com", "5551112222", "female", "1 Main St", "1990-01-01",
	).Error)

	repo := repository.NewLegacyUserRepository(gdb)
	page, err := repo.ListAfter(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "dana@example.com", page[0].Email)
	assert.Equal(t, "5551112222", page[0].Phone)
}
