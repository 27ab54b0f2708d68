package errors

import "errors"

// Client registration errors.
var (
	ErrClientExists   = errors.New("client already exists")
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidName    = errors.New("invalid client name")
)

// Storage errors.
var (
	ErrTokensNotFound  = errors.New("tokens not found")
	ErrMalformedRecord = errors.New("malformed record")
)
