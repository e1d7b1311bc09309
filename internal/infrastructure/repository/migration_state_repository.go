package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxErrorMessageLen = 1000

// MigrationStateRepository persists the lifecycle of bulk runs in a single row.
// A run owns the row while its lease is valid; transitions are conditional
// updates so two processes can never both believe they own it.
type MigrationStateRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMigrationStateRepository(db *gorm.DB) *MigrationStateRepository {
	return &MigrationStateRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *MigrationStateRepository) Get(ctx context.Context) (domain.MigrationState, error) {
	var row models.MigrationState
	err := r.db.WithContext(ctx).First(&row, "id = ?", models.MigrationStateRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MigrationState{State: domain.MigrationNotStarted}, nil
		}
		return domain.MigrationState{}, fmt.Errorf("get migration state: %w", err)
	}

	state := domain.MigrationState{
		State:      domain.MigrationRunState(row.State),
		RunID:      row.RunID,
		TotalUsers: row.TotalUsers,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}
	if row.ErrorMessage != nil {
		state.ErrorMessage = *row.ErrorMessage
	}
	// A lapsed lease means the owning process died mid-run.
	if state.State == domain.MigrationInProgress && row.LeaseExpiresAt != nil && row.LeaseExpiresAt.Before(r.now()) {
		state.State = domain.MigrationFailed
		if state.ErrorMessage == "" {
			state.ErrorMessage = "lease expired"
		}
	}
	return state, nil
}

func (r *MigrationStateRepository) Begin(ctx context.Context, runID string, lease time.Duration) error {
	db := r.db.WithContext(ctx)

	seed := models.MigrationState{ID: models.MigrationStateRowID, State: string(domain.MigrationNotStarted)}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return fmt.Errorf("seed migration state: %w", err)
	}

	now := r.now()
	leaseExpiresAt := now.Add(lease)
	res := db.Model(&models.MigrationState{}).
		Where("id = ? AND (state <> ? OR lease_expires_at IS NULL OR lease_expires_at < ?)",
			models.MigrationStateRowID, string(domain.MigrationInProgress), now).
		Updates(map[string]any{
			"state":            string(domain.MigrationInProgress),
			"run_id":           runID,
			"total_users":      0,
			"error_message":    nil,
			"lease_expires_at": leaseExpiresAt,
			"started_at":       now,
			"finished_at":      nil,
		})
	if res.Error != nil {
		return fmt.Errorf("claim migration state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrMigrationInProgress
	}
	return nil
}

func (r *MigrationStateRepository) Heartbeat(ctx context.Context, runID string, totalUsers int64, lease time.Duration) error {
	res := r.db.WithContext(ctx).Model(&models.MigrationState{}).
		Where("id = ? AND run_id = ? AND state = ?", models.MigrationStateRowID, runID, string(domain.MigrationInProgress)).
		Updates(map[string]any{
			"total_users":      totalUsers,
			"lease_expires_at": r.now().Add(lease),
		})
	if res.Error != nil {
		return fmt.Errorf("heartbeat migration %s: %w", runID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("heartbeat migration %s: run no longer owns the state", runID)
	}
	return nil
}

func (r *MigrationStateRepository) Complete(ctx context.Context, runID string) error {
	return r.finish(ctx, runID, domain.MigrationCompleted, nil)
}

func (r *MigrationStateRepository) Fail(ctx context.Context, runID string, reason string) error {
	reason = truncateReason(reason)
	return r.finish(ctx, runID, domain.MigrationFailed, &reason)
}

func (r *MigrationStateRepository) finish(ctx context.Context, runID string, state domain.MigrationRunState, reason *string) error {
	res := r.db.WithContext(ctx).Model(&models.MigrationState{}).
		Where("id = ? AND run_id = ? AND state = ?", models.MigrationStateRowID, runID, string(domain.MigrationInProgress)).
		Updates(map[string]any{
			"state":            string(state),
			"error_message":    reason,
			"lease_expires_at": nil,
			"finished_at":      r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("mark migration %s %s: %w", runID, state, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark migration %s %s: run no longer owns the state", runID, state)
	}
	return nil
}

func truncateReason(reason string) string {
	if len(reason) <= maxErrorMessageLen {
		return reason
	}
	return reason[:maxErrorMessageLen]
}
