package entity

import "errors"

// Domain errors for progress records and related aggregates.
var (
	ErrInvariantViolation = errors.New("progress record invariant violated")
	ErrProgressNotFound   = errors.New("progress record not found")
	ErrDuplicateProgress  = errors.New("progress record already exists")
	ErrItemNotFound       = errors.New("vocabulary item not found")
	ErrMutationNotFound   = errors.New("queued mutation not found")

	ErrEmptySession = errors.New("no items to practice")
	ErrSessionEnded = errors.New("practice session already ended")
	ErrNoEvaluation = errors.New("no evaluation for the current item")

	ErrOffline        = errors.New("connectivity unavailable")
	ErrSyncInProgress = errors.New("sync already running")

	// ErrRemoteTransient wraps timeouts and 5xx responses from the remote
	// store; transient failures are retried, never treated as corruption.
	ErrRemoteTransient = errors.New("transient remote store failure")
)
