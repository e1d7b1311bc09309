package repository_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db/models"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(openNewStore(t))

	created, err := repo.Create(ctx, domain.User{Name: "Alice", Email: " Alice@Example.com ", Phone: "555-111-2222", Gender: "female"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "female", got.Gender)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(openNewStore(t))

	_, err := repo.Create(ctx, domain.User{Name: "Alice", Email: "alice@example.com", Phone: "5551112222"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.User{Name: "Other", Email: "ALICE@example.com", Phone: "5553334444"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUserRepositoryExistingEmails(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(openNewStore(t))

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := repo.Create(ctx, domain.User{Name: "n", Email: email, Phone: "5551112222"})
		require.NoError(t, err)
	}

	exists, err := repo.ExistsByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.True(t, exists)

	found, err := repo.ExistingEmails(ctx, []string{"a@example.com", "B@example.com", "c@example.com", ""})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Contains(t, found, "a@example.com")
	assert.Contains(t, found, "b@example.com")
}

func TestUserRepositoryInsertBatchSkipsConflicts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(openNewStore(t))

	_, err := repo.Create(ctx, domain.User{Name: "Carol", Email: "carol@example.com", Phone: "5550001111"})
	require.NoError(t, err)

	inserted, err := repo.InsertBatch(ctx, "run-1", []domain.User{
		{Name: "Alice", Email: "alice@example.com", Phone: "5551112222"},
		{Name: "Carol again", Email: "carol@example.com", Phone: "5550002222"},
		{Name: "Alice twin", Email: "Alice@example.com", Phone: "5559990000"},
		{Name: "Bob", Email: "bob@example.com", Phone: "5553334444"},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, "Alice", inserted[0].Name)
	assert.Equal(t, "Bob", inserted[1].Name)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestUserRepositoryListSearchDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(openNewStore(t))

	alice, err := repo.Create(ctx, domain.User{Name: "Alice Smith", Email: "alice@example.com", Phone: "5551112222"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.User{Name: "Bob", Email: "bob_100%@example.com", Phone: "5553334444"})
	require.NoError(t, err)

	all, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	hits, err := repo.Search(ctx, "smith")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, alice.ID, hits[0].ID)

	hits, err = repo.Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Bob", hits[0].Name)

	hits, err = repo.Search(ctx, "_")
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), domain.ErrUserNotFound)

	exists, err := repo.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepositoryFreeTextColumnsAreUnbounded(t *testing.T) {
	ctx := context.Background()
	gdb := openNewStore(t)

	// sqlite ignores varchar widths, so check the declared schema that
	// postgres would get.
	parsed, err := schema.Parse(&models.User{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	for _, name := range []string{"Name", "Phone", "Gender"} {
		field := parsed.LookUpField(name)
		require.NotNil(t, field, name)
		assert.Equal(t, "text", strings.ToLower(field.TagSettings["TYPE"]), "field %s", name)
		assert.Zero(t, field.Size, "field %s", name)
	}

	repo := repository.NewUserRepository(gdb)
	phone := "+44 (0) 20 7946 0958 - 0000 0000 0000 0"
	gender := "Prefer not to say / non-binary identity!"
	created, err := repo.Create(ctx, domain.User{Name: "Sam", Email: "sam@example.com", Phone: phone, Gender: gender})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, phone, got.Phone)
	assert.Equal(t, gender, got.Gender)
}
