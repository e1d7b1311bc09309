package models

import "time"

type User struct {
	ID        string    `gorm:"size:36;primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Email     string    `gorm:"size:320;not null;uniqueIndex"`
	Phone     string    `gorm:"type:text;not null"`
	Gender    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// LegacyUser maps the columns read from the store being migrated from.
// Other legacy columns are ignored.
type LegacyUser struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Name      string
	Email     string `gorm:"size:320;index"`
	Phone     string
	Gender    string
	CreatedAt time.Time
}

func (LegacyUser) TableName() string {
	return "legacy_users"
}
