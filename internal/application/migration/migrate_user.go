package migration

import (
	"context"
	"errors"

	appuser "github.com/mohammadpnp/user-pipeline/internal/application/user"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type MigrateUserInput struct {
	LegacyID uint64
}

type MigrateUserOutput struct {
	Outcome domain.ImportOutcome
	Reason  string
}

// Migrated reports whether the record is now present in the new store
// because of this call.
func (o MigrateUserOutput) Migrated() bool {
	return o.Outcome == domain.OutcomeImported
}

type MigrateUser interface {
	Execute(ctx context.Context, in MigrateUserInput) (MigrateUserOutput, error)
}

type migrateUser struct {
	legacy  domain.LegacyStore
	writer  *appuser.RecordWriter
	metrics Metrics
}

func NewMigrateUser(legacy domain.LegacyStore, writer *appuser.RecordWriter, metrics Metrics) MigrateUser {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &migrateUser{legacy: legacy, writer: writer, metrics: metrics}
}

func (uc *migrateUser) Execute(ctx context.Context, in MigrateUserInput) (MigrateUserOutput, error) {
	rec, err := uc.legacy.GetByID(ctx, in.LegacyID)
	if err != nil {
		if errors.Is(err, domain.ErrLegacyUserNotFound) {
			return MigrateUserOutput{}, err
		}
		return MigrateUserOutput{}, unavailable(ctx, domain.ErrLegacyUnavailable, err)
	}

	result, err := uc.writer.Write(ctx, rec.Raw())
	if err != nil {
		return MigrateUserOutput{}, err
	}
	uc.metrics.RecordMigrationRecord(result.Outcome)

	out := MigrateUserOutput{Outcome: result.Outcome}
	if result.Outcome != domain.OutcomeImported {
		out.Reason = domain.FailureReason(result.Outcome, result.Reason)
	}
	return out, nil
}

