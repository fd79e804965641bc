package repository

import "errors"

// Common repository errors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry indicates a unique constraint violation.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// Resource-specific aliases kept for readable call sites.
var (
	ErrCursorNotFound   = ErrNotFound
	ErrCommentNotFound  = ErrNotFound
	ErrClipNotFound     = ErrNotFound
	ErrTrackNotFound    = ErrNotFound
	ErrSequenceNotFound = ErrNotFound
	ErrColorNotFound    = ErrNotFound
)
