package migration

import "errors"

var (
	ErrNoLegacyUsers = errors.New("no users found in legacy store")
	ErrInvalidLimit  = errors.New("invalid limit")
)
