package migration

import (
	"context"
	"time"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type recordValidator interface {
	Validate(raw domain.RawRecord) (domain.User, error)
}

type emailLookup interface {
	ExistingEmails(ctx context.Context, emails []string) (map[string]struct{}, error)
}

type Metrics interface {
	RecordMigrationRecord(outcome domain.ImportOutcome)
	ObserveMigrationBatch(d time.Duration)
	SetMigrationRunning(running bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordMigrationRecord(domain.ImportOutcome) {}
func (noopMetrics) ObserveMigrationBatch(time.Duration)        {}
func (noopMetrics) SetMigrationRunning(bool)                   {}

type FailureOutput struct {
	Row    int64  `json:"row"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}
