package role

import "errors"

// Domain errors.
var (
	// Lookup misses reported by the store adapters
	ErrUserNotFound   = errors.New("user not found")
	ErrInviteNotFound = errors.New("invite not found")
	ErrActorNotFound  = errors.New("actor not found")

	// Event errors
	ErrInvalidEvent = errors.New("invalid invite accepted event")

	// ErrMetadataWrite wraps the one failure Reconcile surfaces to its caller.
	ErrMetadataWrite = errors.New("update user metadata")
)
