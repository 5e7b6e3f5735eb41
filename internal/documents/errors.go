package documents

import "errors"

var (
	ErrNotFound       = errors.New("document not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidSort    = errors.New("invalid sort field")
	// ErrStorage wraps blob store I/O failures surfaced to callers.
	ErrStorage = errors.New("storage failure")
)
