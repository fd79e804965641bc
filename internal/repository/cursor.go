package repository

import (
	"context"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// CursorRepository stores live cursor rows, one per (user, sequence).
type CursorRepository interface {
	// Upsert inserts the cursor or updates the existing row for the same
	// (user, sequence) pair.
	Upsert(ctx context.Context, cursor *domain.Cursor) error

	// FindByUserSequence returns the cursor row for the pair, or
	// ErrCursorNotFound.
	FindByUserSequence(ctx context.Context, userID, sequenceID string) (*domain.Cursor, error)

	// FindActiveBySequence returns all active cursors within a sequence.
	FindActiveBySequence(ctx context.Context, sequenceID string) ([]domain.Cursor, error)

	// FindActiveByProject returns all active cursors within a project.
	FindActiveByProject(ctx context.Context, projectID string) ([]domain.Cursor, error)

	// Deactivate clears the active flag on the user's cursors. An empty
	// sequenceID deactivates all of the user's cursors.
	Deactivate(ctx context.Context, userID, sequenceID string) error
}
