package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers classify wrapped errors with errors.Is.
var (
	// ErrNotFound means an entity id did not resolve to a record.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized means the entity exists but the caller lacks access.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidInput means the request was malformed (e.g. empty query).
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexUnavailable means the vector index is missing or misconfigured.
	// Retrieval recovers from it by switching to the fallback scan; it is
	// never surfaced to the user.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrTransient marks timeouts and connection-level failures that are
	// safe to retry.
	ErrTransient = errors.New("transient failure")

	// ErrGateFailed marks a workflow business-rule failure. Terminal for
	// the run, surfaced to the user with a specific reason.
	ErrGateFailed = errors.New("gate failed")
)

// Transient wraps err so that errors.Is(err, ErrTransient) holds.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsRetryable reports whether err should be retried with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
