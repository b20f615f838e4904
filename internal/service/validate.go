package service

import (
	"regexp"
	"strings"

	"github.com/jcall/wanderstay/internal/domain"
)

var (
	usernameRe  = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hasLetterRe = regexp.MustCompile(`[a-zA-Z]`)
	hasDigitRe  = regexp.MustCompile(`[0-9]`)
)

// SanitizeInput trims whitespace and strips angle brackets and quote
// characters from user-supplied fields.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		return r
	}, s)
}

func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

func ValidPassword(password string) bool {
	return len(password) >= 8 && hasLetterRe.MatchString(password) && hasDigitRe.MatchString(password)
}

// ValidateSignup checks the sanitized signup fields, returning a
// field-specific validation error for the first failure.
func ValidateSignup(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return domain.Validationf("All fields are required!")
	}
	if !ValidUsername(username) {
		return domain.Validationf("Username must be 3-20 characters long and contain only letters and numbers!")
	}
	if !emailRe.MatchString(email) {
		return domain.Validationf("Please enter a valid email address!")
	}
	if !ValidPassword(password) {
		return domain.Validationf("Password must be at least 8 characters long and contain both letters and numbers!")
	}
	return nil
}
