package service

import "errors"

var (
	ErrInvalidCursor    = errors.New("invalid cursor update")
	ErrInvalidOperation = errors.New("invalid edit operation")
	ErrInvalidComment   = errors.New("invalid comment data")
	ErrApplyFailed      = errors.New("operation could not be applied")
	ErrInternalServer   = errors.New("internal server error")
)
