package user

import "time"

// LegacyUser is a record of the store being migrated from.
type LegacyUser struct {
	ID        uint64
	Name      string
	Email     string
	Phone     string
	Gender    string
	CreatedAt time.Time
}

func (u LegacyUser) Raw() RawRecord {
	return RawRecord{
		FieldName:   u.Name,
		FieldEmail:  u.Email,
		FieldPhone:  u.Phone,
		FieldGender: u.Gender,
	}
}

type MigrationRunState string

const (
	MigrationNotStarted MigrationRunState = "not_started"
	MigrationInProgress MigrationRunState = "in_progress"
	MigrationCompleted  MigrationRunState = "completed"
	MigrationFailed     MigrationRunState = "failed"
)

// MigrationState is the persisted lifecycle of the latest bulk run.
// Counts are deliberately absent: progress is always derived from store contents.
type MigrationState struct {
	State        MigrationRunState
	RunID        string
	TotalUsers   int64
	StartedAt    *time.Time
	FinishedAt   *time.Time
	ErrorMessage string
}

// MigrationStatus is the derived progress view.
type MigrationStatus struct {
	TotalUsers    int64
	MigratedUsers int64
	PendingUsers  int64
	State         MigrationRunState
}

// MigrationRun is the tally of one bulk invocation.
type MigrationRun struct {
	Total    int64
	Success  int64
	Failed   int64
	Failures []ImportFailure
}

func (r *MigrationRun) Record(legacyID uint64, email string, outcome ImportOutcome, reason error) {
	r.Total++
	if outcome == OutcomeImported {
		r.Success++
		return
	}
	r.Failed++
	r.Failures = keepFailure(r.Failures, ImportFailure{RowIndex: int64(legacyID), Email: email, Reason: FailureReason(outcome, reason)})
}
