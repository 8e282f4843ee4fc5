package services

import (
	"errors"
	"fmt"
)

// Request-scoped errors. Handlers map these to client-facing status
// codes; none of them are process-fatal.
var (
	// ErrNotFound covers both "no such id" and "id present but content
	// missing". The latter is an integrity fault and is logged as such,
	// but callers see the same result.
	ErrNotFound = errors.New("paste not found")

	// ErrContentTooLarge means the submitted content exceeds the
	// configured maximum size.
	ErrContentTooLarge = errors.New("content too large")

	// ErrEmptyContent means the submitted content is empty or all
	// whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrSlugExhausted means no free id could be generated. Only
	// reachable when the id space is effectively saturated.
	ErrSlugExhausted = errors.New("failed to generate unique paste id")
)

// StorageError marks a failed snapshot or content write/delete. It is a
// server-side fault, not a caller error, and maps to HTTP 500.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
