package domain

import "errors"

// Session and access-control failures.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden: insufficient role")
)

// Account failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
)

// Record failures.
var (
	ErrValidation          = errors.New("validation failed")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrAgentOutputNotFound = errors.New("agent output not found")
	ErrRequirementNotFound = errors.New("requirement not found")
	ErrFileNotFound        = errors.New("file not found")
)
