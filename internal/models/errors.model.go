package models

import "errors"

// Workflow error taxonomy. Handlers map these onto redirect error codes with
// errors.Is; controllers wrap them via the logger's ErrorWithType.
var (
	// ErrInvalidToken covers absent or malformed capability tokens, and tokens
	// that resolve to no row. A token for the wrong row is reported identically.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAlreadyConsumed marks a valid token whose transition already happened.
	ErrAlreadyConsumed = errors.New("token already consumed")

	// ErrConflictingState marks a booking or assignment that is not in the
	// state required for the requested transition.
	ErrConflictingState = errors.New("conflicting state")

	// ErrUpstreamUnavailable marks a failed collaborator call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrValidationFailure marks a malformed request payload, rejected before
	// any store access.
	ErrValidationFailure = errors.New("validation failure")
)
