package domain

import "errors"

// Domain errors (no external dependencies). The HTTP layer maps these to
// status codes; application code returns them wrapped with %w.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrValidation          = errors.New("invalid input")
	ErrInsufficientSkill   = errors.New("worker skill below task requirement")
	ErrUnavailable         = errors.New("no capacity in the requested window")
	ErrConflict            = errors.New("conflict with committed assignments")
	ErrTimeout             = errors.New("deadline exceeded before report completed")
	ErrUpstreamUnavailable = errors.New("data store unreachable")
	ErrInvalidTransition   = errors.New("state transition not allowed")
)
