package auth

import (
	"regexp"
	"strings"
)

// Field validators for the registration flow. Each is a pure function: format
// failures never reach the database, and nothing here has side effects. The
// uniqueness lookup lives in the service so step 3 can recompose the same
// checks before committing.

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	minUsernameLen = 3
	maxUsernameLen = 15
	minPasswordLen = 8
)

// NormalizeIdentity trims and validates username/email format. The returned
// email is lower-cased; callers must use the returned values.
func NormalizeIdentity(username, email string) (string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return "", "", ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return "", "", ErrInvalidUsername
	}
	if !emailPattern.MatchString(email) {
		return "", "", ErrInvalidEmail
	}
	return username, email, nil
}

// Profile carries the normalized step-2 fields.
type Profile struct {
	FirstName string
	LastName  string
	Country   string
}

// ValidateProfile checks the step-2 fields. Country is upper-cased to match
// the country-code convention in the store.
func ValidateProfile(firstName, lastName, country string) (Profile, error) {
	p := Profile{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Country:   strings.ToUpper(strings.TrimSpace(country)),
	}
	if p.FirstName == "" || p.LastName == "" {
		return Profile{}, ErrMissingName
	}
	if p.Country == "" {
		return Profile{}, ErrMissingCountry
	}
	return p, nil
}

// ValidateCredentials checks the step-3 password fields. The confirm match is
// exact and case-sensitive.
func ValidateCredentials(password, confirmPassword string, termsAccepted bool) error {
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}
	if !termsAccepted {
		return ErrTermsNotAccepted
	}
	return nil
}
