package user

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/sirupsen/logrus"
)

type recordValidator interface {
	Validate(raw domain.RawRecord) (domain.User, error)
}

type userCreator interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// RowResult is the outcome of pushing one raw record through the pipeline.
// Reason is set for skipped rows only.
type RowResult struct {
	User    domain.User
	Outcome domain.ImportOutcome
	Reason  error
}

// RecordWriter runs validate, reserve, write and release for a single record.
// It is the only path through which single records reach the new store.
type RecordWriter struct {
	validator recordValidator
	dedup     domain.DedupIndex
	store     userCreator
	logger    logrus.FieldLogger
}

func NewRecordWriter(validator recordValidator, dedup domain.DedupIndex, store userCreator, logger logrus.FieldLogger) *RecordWriter {
	return &RecordWriter{validator: validator, dedup: dedup, store: store, logger: logger}
}

// Write returns an error only for call-level failures; those wrap
// domain.ErrStoreUnavailable unless the context was cancelled.
func (w *RecordWriter) Write(ctx context.Context, raw domain.RawRecord) (RowResult, error) {
	if err := ctx.Err(); err != nil {
		return RowResult{}, err
	}

	candidate, err := w.validator.Validate(raw)
	if err != nil {
		return RowResult{Outcome: domain.OutcomeSkippedInvalid, Reason: err}, nil
	}

	reserved, err := w.dedup.Reserve(ctx, candidate.Email)
	if err != nil {
		return RowResult{}, unavailable(ctx, err)
	}
	if !reserved {
		return RowResult{User: candidate, Outcome: domain.OutcomeSkippedDuplicate, Reason: domain.ErrDuplicateEmail}, nil
	}
	defer w.release(ctx, candidate.Email)

	created, err := w.store.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return RowResult{User: candidate, Outcome: domain.OutcomeSkippedDuplicate, Reason: domain.ErrDuplicateEmail}, nil
		}
		return RowResult{}, unavailable(ctx, err)
	}

	return RowResult{User: created, Outcome: domain.OutcomeImported}, nil
}

func (w *RecordWriter) release(ctx context.Context, email string) {
	if err := w.dedup.Release(context.WithoutCancel(ctx), email); err != nil {
		w.logger.WithError(err).WithField("email", email).Warn("release email reservation")
	}
}

func unavailable(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
