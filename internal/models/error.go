package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authorization outcomes of the sign flow
	ErrUnregisteredUser = errors.New("username not registered")
	ErrInvalidOTP       = errors.New("invalid OTP secrets")

	// ErrInvalidKey marks unusable signing key material. It is a startup error.
	ErrInvalidKey = errors.New("invalid signing key")

	// ErrUpstreamStore wraps any failure of the secret store collaborator.
	ErrUpstreamStore = errors.New("secret store unavailable")
)
