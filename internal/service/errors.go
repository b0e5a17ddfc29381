package service

import "errors"

// Closed error taxonomy for the service layer. Handlers map these to HTTP
// statuses; raw driver errors never reach a client.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrValidation         = errors.New("invalid input")
)
