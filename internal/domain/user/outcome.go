package user

import (
	"cmp"
	"errors"
	"slices"
)

type ImportOutcome int

const (
	OutcomeImported ImportOutcome = iota
	OutcomeSkippedDuplicate
	OutcomeSkippedInvalid
)

func (o ImportOutcome) String() string {
	switch o {
	case OutcomeImported:
		return "imported"
	case OutcomeSkippedDuplicate:
		return "skipped_duplicate"
	case OutcomeSkippedInvalid:
		return "skipped_invalid"
	default:
		return "unknown"
	}
}

// MaxStoredFailures caps the per-row diagnostics kept for one run.
const MaxStoredFailures = 100

type ImportFailure struct {
	RowIndex int64
	Email    string
	Reason   string
}

// ImportSummary is the tally of one upload.
type ImportSummary struct {
	TotalRecords int64
	SuccessCount int64
	FailCount    int64
	Failures     []ImportFailure
}

// Record adds one row outcome to the summary. reason is only kept for failures.
func (s *ImportSummary) Record(row int64, email string, outcome ImportOutcome, reason error) {
	s.TotalRecords++
	if outcome == OutcomeImported {
		s.SuccessCount++
		return
	}
	s.FailCount++
	s.Failures = keepFailure(s.Failures, ImportFailure{RowIndex: row, Email: email, Reason: FailureReason(outcome, reason)})
}

// keepFailure inserts f in row order and keeps only the MaxStoredFailures
// lowest rows, so the kept set does not depend on completion order.
func keepFailure(failures []ImportFailure, f ImportFailure) []ImportFailure {
	i, _ := slices.BinarySearchFunc(failures, f.RowIndex, func(e ImportFailure, row int64) int {
		return cmp.Compare(e.RowIndex, row)
	})
	if i >= MaxStoredFailures {
		return failures
	}
	failures = slices.Insert(failures, i, f)
	if len(failures) > MaxStoredFailures {
		failures = failures[:MaxStoredFailures]
	}
	return failures
}

// FailureReason renders the taxonomy name of a rejected row.
func FailureReason(outcome ImportOutcome, err error) string {
	switch {
	case outcome == OutcomeSkippedDuplicate:
		return "DuplicateEmail"
	case errors.Is(err, ErrMissingRequiredField):
		return "MissingRequiredField"
	case errors.Is(err, ErrInvalidEmailFormat):
		return "InvalidEmailFormat"
	case errors.Is(err, ErrInvalidPhoneFormat):
		return "InvalidPhoneFormat"
	case err != nil:
		return err.Error()
	default:
		return outcome.String()
	}
}
