package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrIncorrectPassword  = errors.New("current password does not match")
	ErrNotFound           = errors.New("requested resource not found")
	ErrForbidden          = errors.New("operation not permitted for this user")
	ErrAlreadyCheckedIn   = errors.New("attendance already recorded for today")
	ErrCheckNotOpen       = errors.New("attendance window has not opened yet")
)
