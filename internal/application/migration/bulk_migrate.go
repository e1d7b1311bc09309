package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize = 100
	DefaultLease     = 60 * time.Second
)

type BulkMigrateInput struct {
	Details bool
}

type BulkMigrateOutput struct {
	RunID    string
	Total    int64
	Success  int64
	Failed   int64
	Failures []FailureOutput
}

type BulkMigrate interface {
	Execute(ctx context.Context, in BulkMigrateInput) (BulkMigrateOutput, error)
}

type BulkConfig struct {
	BatchSize int
	Lease     time.Duration
}

type bulkMigrate struct {
	legacy    domain.LegacyStore
	store     emailLookup
	writer    domain.BatchWriter
	dedup     domain.DedupIndex
	state     domain.MigrationStateRepository
	validator recordValidator
	metrics   Metrics
	logger    logrus.FieldLogger
	cfg       BulkConfig
}

func NewBulkMigrate(
	legacy domain.LegacyStore,
	store emailLookup,
	writer domain.BatchWriter,
	dedup domain.DedupIndex,
	state domain.MigrationStateRepository,
	validator recordValidator,
	metrics Metrics,
	logger logrus.FieldLogger,
	cfg BulkConfig,
) BulkMigrate {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultLease
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &bulkMigrate{
		legacy:    legacy,
		store:     store,
		writer:    writer,
		dedup:     dedup,
		state:     state,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Execute migrates every legacy record whose email is not yet in the new
// store. Pending records are re-derived from store contents on every call, so
// an interrupted run is resumed by simply calling Execute again.
func (uc *bulkMigrate) Execute(ctx context.Context, in BulkMigrateInput) (BulkMigrateOutput, error) {
	runID := uuid.NewString()
	logger := uc.logger.WithField("run_id", runID)

	if err := uc.state.Begin(ctx, runID, uc.cfg.Lease); err != nil {
		if errors.Is(err, domain.ErrMigrationInProgress) {
			return BulkMigrateOutput{}, err
		}
		return BulkMigrateOutput{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	uc.metrics.SetMigrationRunning(true)
	defer uc.metrics.SetMigrationRunning(false)

	run := domain.MigrationRun{}

	total, err := uc.legacy.Count(ctx)
	if err != nil {
		return uc.abort(ctx, logger, runID, run, in.Details, fmt.Errorf("%w: %v", domain.ErrLegacyUnavailable, err))
	}
	if total == 0 {
		if err := uc.state.Complete(ctx, runID); err != nil {
			logger.WithError(err).Warn("complete empty migration run")
		}
		logger.Info("legacy store is empty")
		return BulkMigrateOutput{RunID: runID}, ErrNoLegacyUsers
	}
	if err := uc.state.Heartbeat(ctx, runID, total, uc.cfg.Lease); err != nil {
		return uc.abort(ctx, logger, runID, run, in.Details, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err))
	}

	logger.WithField("total_users", total).Info("bulk migration started")

	var afterID uint64
	for batchNo := 1; ; batchNo++ {
		if err := ctx.Err(); err != nil {
			return uc.abort(ctx, logger, runID, run, in.Details, err)
		}

		batch, err := uc.legacy.ListAfter(ctx, afterID, uc.cfg.BatchSize)
		if err != nil {
			return uc.abort(ctx, logger, runID, run, in.Details, unavailable(ctx, domain.ErrLegacyUnavailable, err))
		}
		if len(batch) == 0 {
			break
		}
		afterID = batch[len(batch)-1].ID

		started := time.Now()
		if err := uc.migrateBatch(ctx, runID, batch, &run); err != nil {
			return uc.abort(ctx, logger, runID, run, in.Details, err)
		}
		uc.metrics.ObserveMigrationBatch(time.Since(started))

		if err := uc.state.Heartbeat(ctx, runID, total, uc.cfg.Lease); err != nil {
			return uc.abort(ctx, logger, runID, run, in.Details, unavailable(ctx, domain.ErrStoreUnavailable, err))
		}

		logger.WithFields(logrus.Fields{
			"batch":   batchNo,
			"rows":    len(batch),
			"success": run.Success,
			"failed":  run.Failed,
		}).Debug("migration batch committed")
	}

	if err := uc.state.Complete(ctx, runID); err != nil {
		return uc.abort(ctx, logger, runID, run, in.Details, unavailable(ctx, domain.ErrStoreUnavailable, err))
	}

	logger.WithFields(logrus.Fields{
		"total":   run.Total,
		"success": run.Success,
		"failed":  run.Failed,
	}).Info("bulk migration completed")

	return toBulkOutput(runID, run, in.Details), nil
}

type pendingUser struct {
	legacyID uint64
	user     domain.User
}

// migrateBatch writes the pending records of one batch with a single
// all-or-nothing InsertBatch call.
func (uc *bulkMigrate) migrateBatch(ctx context.Context, runID string, batch []domain.LegacyUser, run *domain.MigrationRun) error {
	emails := make([]string, 0, len(batch))
	for _, rec := range batch {
		emails = append(emails, domain.NormalizeEmail(rec.Email))
	}
	existing, err := uc.store.ExistingEmails(ctx, emails)
	if err != nil {
		return unavailable(ctx, domain.ErrStoreUnavailable, err)
	}

	var (
		pending  []pendingUser
		reserved []string
	)
	defer func() {
		releaseCtx := context.WithoutCancel(ctx)
		for _, email := range reserved {
			if err := uc.dedup.Release(releaseCtx, email); err != nil {
				uc.logger.WithError(err).WithField("email", email).Warn("release email reservation")
			}
		}
	}()

	for _, rec := range batch {
		email := domain.NormalizeEmail(rec.Email)
		if _, migrated := existing[email]; migrated {
			continue
		}

		u, err := uc.validator.Validate(rec.Raw())
		if err != nil {
			uc.record(run, rec.ID, email, domain.OutcomeSkippedInvalid, err)
			continue
		}

		ok, err := uc.dedup.Reserve(ctx, u.Email)
		if err != nil {
			return unavailable(ctx, domain.ErrStoreUnavailable, err)
		}
		if !ok {
			uc.record(run, rec.ID, u.Email, domain.OutcomeSkippedDuplicate, domain.ErrDuplicateEmail)
			continue
		}
		reserved = append(reserved, u.Email)
		pending = append(pending, pendingUser{legacyID: rec.ID, user: u})
	}

	if len(pending) == 0 {
		return nil
	}

	users := make([]domain.User, 0, len(pending))
	for _, p := range pending {
		users = append(users, p.user)
	}
	inserted, err := uc.writer.InsertBatch(ctx, runID, users)
	if err != nil {
		return unavailable(ctx, domain.ErrStoreUnavailable, err)
	}

	written := make(map[string]struct{}, len(inserted))
	for _, u := range inserted {
		written[domain.NormalizeEmail(u.Email)] = struct{}{}
	}
	for _, p := range pending {
		if _, ok := written[p.user.Email]; ok {
			uc.record(run, p.legacyID, p.user.Email, domain.OutcomeImported, nil)
			continue
		}
		uc.record(run, p.legacyID, p.user.Email, domain.OutcomeSkippedDuplicate, domain.ErrDuplicateEmail)
	}
	return nil
}

func (uc *bulkMigrate) record(run *domain.MigrationRun, legacyID uint64, email string, outcome domain.ImportOutcome, reason error) {
	run.Record(legacyID, email, outcome, reason)
	uc.metrics.RecordMigrationRecord(outcome)
}

// abort marks the run failed. Whatever was committed before the failure stays
// committed and is picked up as migrated by the next run.
func (uc *bulkMigrate) abort(ctx context.Context, logger logrus.FieldLogger, runID string, run domain.MigrationRun, details bool, cause error) (BulkMigrateOutput, error) {
	if err := uc.state.Fail(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		logger.WithError(err).Warn("mark migration run failed")
	}
	logger.WithError(cause).WithFields(logrus.Fields{
		"total":   run.Total,
		"success": run.Success,
		"failed":  run.Failed,
	}).Error("bulk migration aborted")
	return toBulkOutput(runID, run, details), cause
}

func toBulkOutput(runID string, run domain.MigrationRun, details bool) BulkMigrateOutput {
	out := BulkMigrateOutput{
		RunID:   runID,
		Total:   run.Total,
		Success: run.Success,
		Failed:  run.Failed,
	}
	if !details {
		return out
	}

	out.Failures = make([]FailureOutput, 0, len(run.Failures))
	for _, f := range run.Failures {
		out.Failures = append(out.Failures, FailureOutput{Row: f.RowIndex, Email: f.Email, Reason: f.Reason})
	}
	sort.Slice(out.Failures, func(i, j int) bool { return out.Failures[i].Row < out.Failures[j].Row })
	return out
}

// unavailable keeps cancellation visible to callers instead of reporting it
// as a store outage.
func unavailable(ctx context.Context, sentinel, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
