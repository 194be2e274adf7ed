package services

import (
	"unicode"

	"storefront-backend/apperrors"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores or rejects input past 72 bytes.
	maxPasswordLength = 72
)

// checkPasswordLength bounds password in bytes, not runes.
func checkPasswordLength(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.ErrBadRequest.WithMessage("Password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return apperrors.ErrBadRequest.WithMessage("Password must be at most 72 bytes")
	}
	return nil
}

// ValidatePassword enforces the customer password rules: eight to 72 bytes
// with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(password string) error {
	if err := checkPasswordLength(password); err != nil {
		return err
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return apperrors.ErrBadRequest.WithMessage("Password must contain upper-case, lower-case and numeric characters")
	}
	return nil
}

// HashPassword hashes password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal.WithMessage("Failed to hash password"), err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
