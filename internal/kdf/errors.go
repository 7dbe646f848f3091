package kdf

import "errors"

var (
	// ErrDerivation is returned when the hashing step cannot run with the given parameters.
	ErrDerivation = errors.New("key derivation failed")
	// ErrEmptyPassword is returned when an empty password is supplied.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrSaltLength is returned when a salt does not have the configured length.
	ErrSaltLength = errors.New("invalid salt length")
)
