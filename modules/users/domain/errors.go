package domain

import "errors"

// Domain errors - business rule violations.
// These errors are part of the domain language.
var (
	// Profile errors
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileDeleted      = errors.New("profile has been deleted")
	ErrProfileFieldTooLong = errors.New("profile field is too long")

	// Email errors
	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("email format is invalid")
	ErrEmailExists   = errors.New("an account with this email already exists")

	// Password errors
	ErrPasswordWeak = errors.New("password must be 8-72 characters and contain a letter and a digit")

	// Name errors
	ErrNameRequired = errors.New("full name is required")
	ErrNameLength   = errors.New("full name must be 2-100 characters")

	ErrRoleInvalid  = errors.New("role must be farmer or buyer")
	ErrPhoneInvalid = errors.New("phone must contain 7-20 digits")

	// Authentication errors
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailNotConfirmed   = errors.New("email address has not been confirmed")
	ErrVerificationInvalid = errors.New("verification code is invalid or has expired")
	ErrTooManyRequests     = errors.New("too many requests, try again later")
	ErrUnauthenticated     = errors.New("authentication required")
)
