package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxEmailLength    = 254
	maxNameLength     = 100
	minPasswordLength = 12
	maxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

var weakPasswordPatterns = []string{
	"password", "123456", "qwerty", "letmein", "welcome",
	"kidneymate", "dialysis",
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > maxEmailLength {
		return errors.New("email address is too long")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address format")
	}
	return nil
}

// ValidateName checks a display name. Length counts characters, not bytes,
// so names in Indic scripts get the same allowance as Latin ones.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return errors.New("name is too long (max 100 characters)")
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return errors.New("name contains invalid characters")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 12 characters")
	}
	if len(password) > maxPasswordLength {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, pattern := range weakPasswordPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}
	return nil
}
