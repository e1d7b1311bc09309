package user

import (
	"context"
	"time"
)

// UserStore is the new store. Emails passed in and returned are normalized.
type UserStore interface {
	Create(ctx context.Context, u User) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistingEmails(ctx context.Context, emails []string) (map[string]struct{}, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit int) ([]User, error)
	Search(ctx context.Context, term string) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}

// BatchWriter inserts a chunk atomically. Users whose email already exists are
// left out of the returned slice instead of failing the chunk.
type BatchWriter interface {
	InsertBatch(ctx context.Context, runID string, users []User) ([]User, error)
}

type LegacyStore interface {
	Count(ctx context.Context) (int64, error)
	ListAfter(ctx context.Context, afterID uint64, limit int) ([]LegacyUser, error)
	GetByID(ctx context.Context, id uint64) (*LegacyUser, error)
}

// DedupIndex serializes the uniqueness decision for emails. A successful
// Reserve must be followed by Release once the write has settled.
type DedupIndex interface {
	Reserve(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

type MigrationStateRepository interface {
	Get(ctx context.Context) (MigrationState, error)
	Begin(ctx context.Context, runID string, lease time.Duration) error
	Heartbeat(ctx context.Context, runID string, totalUsers int64, lease time.Duration) error
	Complete(ctx context.Context, runID string) error
	Fail(ctx context.Context, runID string, reason string) error
}
