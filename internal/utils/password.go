package utils

import (
	"errors"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooWeak  = errors.New("password is too weak")
)

// minEntropyBits roughly corresponds to a mixed-case alphanumeric password of
// 10+ characters.
const minEntropyBits = 50

// ValidatePasswordStrength validates that a password meets the strength policy.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if err := passwordvalidator.Validate(password, minEntropyBits); err != nil {
		return ErrPasswordTooWeak
	}
	return nil
}
