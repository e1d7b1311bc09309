package user

import "errors"

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidEmailFormat   = errors.New("invalid email format")
	ErrInvalidPhoneFormat   = errors.New("invalid phone format")

	ErrDuplicateEmail      = errors.New("duplicate email")
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrLegacyUnavailable   = errors.New("legacy store unavailable")
	ErrUserNotFound        = errors.New("user not found")
	ErrLegacyUserNotFound  = errors.New("legacy user not found")
	ErrMigrationInProgress = errors.New("migration already in progress")
)

// IsValidationError reports whether err belongs to the per-row validation taxonomy.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrInvalidEmailFormat) ||
		errors.Is(err, ErrInvalidPhoneFormat)
}
