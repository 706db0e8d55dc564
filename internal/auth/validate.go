package auth

import (
	"errors"
	"regexp"
	"unicode"
)

var (
	ErrInvalidEmail    = errors.New("Email is invalid")
	ErrInvalidPassword = errors.New("Password must be minimum 8 characters long, contain a number, and a capital letter")
	ErrInvalidUsername = errors.New("Username can only contain lowercase letters")
)

const MinPasswordLength = 8

// MaxPasswordLength is the longest input bcrypt accepts, in bytes.
const MaxPasswordLength = 72

var (
	emailPattern    = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	usernamePattern = regexp.MustCompile(`^[a-z]+$`)
)

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword requires MinPasswordLength to MaxPasswordLength ASCII
// letters or digits with at least one lower-case letter, one upper-case
// letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrInvalidPassword
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return ErrInvalidPassword
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			return ErrInvalidPassword
		}
	}
	if !lower || !upper || !digit {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateRegistration checks username, email and password in that order.
func ValidateRegistration(username, email, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}
