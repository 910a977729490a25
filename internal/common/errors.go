// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Sync errors.
	ErrFetch      = errors.New("source fetch failed")
	ErrExtraction = errors.New("extraction failed")
	ErrDateParse  = errors.New("date parse failed")
	ErrStorage    = errors.New("storage write failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FetchError reports a failed read of the remote sheet. It aborts only the current cycle.
type FetchError struct {
	Err           error
	SpreadsheetID string
	Range         string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s!%s: %v", e.SpreadsheetID, e.Range, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// StorageError reports a failed write of a cycle's records.
type StorageError struct {
	Err  error
	Line int // sheet line of the failing row, 0 when not row specific
}

func (e *StorageError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("store row %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("store records: %v", e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
