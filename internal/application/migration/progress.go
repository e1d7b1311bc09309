package migration

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type userReader interface {
	emailLookup
	List(ctx context.Context, limit int) ([]domain.User, error)
}

type stateReader interface {
	Get(ctx context.Context) (domain.MigrationState, error)
}

type RecordOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Progress is a read-only view derived from store contents. It keeps no
// counters of its own.
type Progress struct {
	legacy    domain.LegacyStore
	store     userReader
	state     stateReader
	batchSize int
	maxLimit  int
}

func NewProgress(legacy domain.LegacyStore, store userReader, state stateReader, batchSize, maxLimit int) *Progress {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	return &Progress{legacy: legacy, store: store, state: state, batchSize: batchSize, maxLimit: maxLimit}
}

// Status walks the legacy store in batches and counts the records whose
// email is present in the new store.
func (p *Progress) Status(ctx context.Context) (domain.MigrationStatus, error) {
	var (
		status  domain.MigrationStatus
		afterID uint64
	)
	for {
		batch, err := p.legacy.ListAfter(ctx, afterID, p.batchSize)
		if err != nil {
			return domain.MigrationStatus{}, unavailable(ctx, domain.ErrLegacyUnavailable, err)
		}
		if len(batch) == 0 {
			break
		}
		afterID = batch[len(batch)-1].ID

		emails := make([]string, 0, len(batch))
		for _, rec := range batch {
			emails = append(emails, domain.NormalizeEmail(rec.Email))
		}
		existing, err := p.store.ExistingEmails(ctx, emails)
		if err != nil {
			return domain.MigrationStatus{}, unavailable(ctx, domain.ErrStoreUnavailable, err)
		}

		status.TotalUsers += int64(len(batch))
		for _, email := range emails {
			if _, ok := existing[email]; ok {
				status.MigratedUsers++
			}
		}
	}
	status.PendingUsers = status.TotalUsers - status.MigratedUsers

	state, err := p.state.Get(ctx)
	if err != nil {
		return domain.MigrationStatus{}, unavailable(ctx, domain.ErrStoreUnavailable, err)
	}
	status.State = state.State
	return status, nil
}

// Records lists new-store users in insertion order.
func (p *Progress) Records(ctx context.Context, limit int) ([]RecordOutput, error) {
	if limit <= 0 || limit > p.maxLimit {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidLimit, p.maxLimit)
	}

	users, err := p.store.List(ctx, limit)
	if err != nil {
		return nil, unavailable(ctx, domain.ErrStoreUnavailable, err)
	}

	out := make([]RecordOutput, 0, len(users))
	for _, u := range users {
		out = append(out, RecordOutput{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone})
	}
	return out, nil
}
