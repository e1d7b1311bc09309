package user

import (
	"strings"
	"time"
)

// User is the canonical record owned by the new store.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Gender    string
	CreatedAt time.Time
}

// Column keys of a RawRecord.
const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldPhone  = "phone"
	FieldGender = "gender"
)

// RawRecord is one untyped row keyed by column header.
type RawRecord map[string]string

func (r RawRecord) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// NormalizeEmail is the natural key used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SourceRow is one record read from an upload. Number is the 1-based position
// in the source, used only for diagnostics.
type SourceRow struct {
	Number int64
	Record RawRecord
}
