package user

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9 +\-()]+$`)
)

const minPhoneDigits = 7

// Email is bounded by the width of the users.email column; the other
// columns are unbounded text.
type candidate struct {
	Name  string `validate:"required"`
	Email string `validate:"required,max=320,useremail"`
	Phone string `validate:"required,userphone"`
}

// Validator turns RawRecords into Users. It is pure and safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
)

// DefaultValidator returns a process-wide Validator.
func DefaultValidator() *Validator {
	defaultValidatorOnce.Do(func() {
		defaultValidator = NewValidator()
	})
	return defaultValidator
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("useremail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("userphone", func(fl validator.FieldLevel) bool {
		return isValidPhone(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate normalizes and checks one record. The returned error is one of
// ErrMissingRequiredField, ErrInvalidEmailFormat or ErrInvalidPhoneFormat.
func (val *Validator) Validate(raw RawRecord) (User, error) {
	c := candidate{
		Name:  raw.Get(FieldName),
		Email: raw.Get(FieldEmail),
		Phone: raw.Get(FieldPhone),
	}

	if err := val.v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return User{}, ErrMissingRequiredField
		}
		switch verrs[0].Tag() {
		case "useremail", "max":
			return User{}, ErrInvalidEmailFormat
		case "userphone":
			return User{}, ErrInvalidPhoneFormat
		default:
			return User{}, ErrMissingRequiredField
		}
	}

	return User{
		Name:   c.Name,
		Email:  NormalizeEmail(c.Email),
		Phone:  c.Phone,
		Gender: raw.Get(FieldGender),
	}, nil
}

func isValidPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}
