package service

import "errors"

// Sentinel errors returned by the services. The API layer maps them to HTTP
// status codes with errors.Is.
var (
	// ErrInvalidCredentials is returned by Login when the email is unknown or
	// the password does not match. Both cases are indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is returned when creating or renaming a user onto an email
	// that is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrUnknownTaskStatus is returned for a status outside the seeded set.
	ErrUnknownTaskStatus = errors.New("unknown task status")

	// ErrEmptyUpdate is returned when an update request changes no field.
	ErrEmptyUpdate = errors.New("no fields to update")
)
