package services

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrTokenMissing is returned when a remote call is attempted before an
	// access token has been saved.
	ErrTokenMissing = errors.New("access token not configured")
)
