// Package validation holds the input rules shared by the auth, profile, feed and onboarding flows.
package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

// Auth input errors. Their text is shown to the user verbatim.
var (
	ErrWeakPassword = errors.New("Password should be at least 6 characters")
	ErrLongPassword = errors.New("Password must be at most 128 characters")
	ErrInvalidEmail = errors.New("Invalid email address")
)

// ValidatePassword applies the same length rule the hosted auth provider enforces.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return ErrWeakPassword
	}
	if n > MaxPasswordLength {
		return ErrLongPassword
	}
	return nil
}

// NormalizeEmail trims and lowercases an address and checks it parses as a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
