package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

const stagingTableDDL = `
CREATE UNLOGGED TABLE IF NOT EXISTS stg_users (
  run_id TEXT NOT NULL,
  row_index BIGINT NOT NULL,
  id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  gender TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stg_users_run_id ON stg_users (run_id);
`

// UserBulkImportRepository is the postgres BatchWriter. A chunk is copied
// into an unlogged staging table and promoted with a single INSERT ... SELECT,
// which keeps round trips constant regardless of chunk size.
type UserBulkImportRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewUserBulkImportRepository(pool *pgxpool.Pool) *UserBulkImportRepository {
	return &UserBulkImportRepository{pool: pool, now: time.Now}
}

func (r *UserBulkImportRepository) EnsureStagingTable(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, stagingTableDDL); err != nil {
		return fmt.Errorf("create stg_users: %w", err)
	}
	return nil
}

func (r *UserBulkImportRepository) InsertBatch(ctx context.Context, runID string, users []domain.User) ([]domain.User, error) {
	if len(users) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]any, 0, len(users))
	for i, u := range users {
		id := u.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, []any{runID, int64(i), id, u.Name, domain.NormalizeEmail(u.Email), u.Phone, u.Gender})
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"stg_users"},
		[]string{"run_id", "row_index", "id", "name", "email", "phone", "gender"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return nil, fmt.Errorf("copy users staging: %w", err)
	}

	inserted, err := promoteStagedUsers(ctx, tx, runID, r.now().UTC())
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM stg_users WHERE run_id = $1", runID); err != nil {
		return nil, fmt.Errorf("cleanup stg_users: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit user batch: %w", err)
	}

	return inserted, nil
}

// promoteStagedUsers keeps the first staged row per email and skips emails the
// users table already holds.
func promoteStagedUsers(ctx context.Context, tx pgx.Tx, runID string, now time.Time) ([]domain.User, error) {
	rows, err := tx.Query(ctx, `
WITH staged AS (
    SELECT DISTINCT ON (email) row_index, id, name, email, phone, gender
    FROM stg_users
    WHERE run_id = $1
    ORDER BY email, row_index
), inserted AS (
    INSERT INTO users (id, name, email, phone, gender, created_at, updated_at)
    SELECT id, name, email, phone, gender, $2::timestamptz, $2::timestamptz
    FROM staged
    ORDER BY row_index
    ON CONFLICT (email) DO NOTHING
    RETURNING id, name, email, phone, gender, created_at
)
SELECT i.id, i.name, i.email, i.phone, i.gender, i.created_at
FROM inserted i
JOIN staged s ON s.email = i.email
ORDER BY s.row_index
`, runID, now)
	if err != nil {
		return nil, fmt.Errorf("promote staged users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Gender, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan promoted user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read promoted users: %w", err)
	}
	return out, nil
}
