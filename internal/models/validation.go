package models

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits.
const (
	MaxUsernameLen = 64
	MaxTextLen     = 280
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateUsername checks presence and length of a username.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return NewValidationError("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return NewValidationError("username too long (max 64 characters)")
	}
	return nil
}

// ValidateEmail checks presence and shape of an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email is required")
	}
	if !emailRegex.MatchString(email) {
		return NewValidationError("email must be a valid email address")
	}
	return nil
}

// ValidateText checks that a thought or reaction body holds 1 to 280 characters.
func ValidateText(field, text string) error {
	n := utf8.RuneCountInString(text)
	if n == 0 || strings.TrimSpace(text) == "" {
		return NewValidationError(field + " is required")
	}
	if n > MaxTextLen {
		return NewValidationError(field + " too long (max 280 characters)")
	}
	return nil
}
