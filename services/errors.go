package services

import "errors"

var (
	// ErrForbidden is returned when the caller may not perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Login for unknown users and bad passwords alike
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned when a session token fails validation
	ErrInvalidToken = errors.New("invalid token")
	// ErrUsernameTaken and ErrEmailTaken report registration conflicts
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	// ErrClinicNotFound is returned when a request names a clinic that does not exist
	ErrClinicNotFound = errors.New("clinic not found")
)
