package models

import "time"

// MigrationStateRowID is the primary key of the single state row.
const MigrationStateRowID = 1

type MigrationState struct {
	ID             uint   `gorm:"primaryKey"`
	State          string `gorm:"size:32;not null"`
	RunID          string `gorm:"size:36"`
	TotalUsers     int64  `gorm:"not null;default:0"`
	ErrorMessage   *string
	LeaseExpiresAt *time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (MigrationState) TableName() string {
	return "migration_state"
}
