package repository

import (
	"context"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// CommentRepository stores threaded comments and resolves them joined with
// author display info.
type CommentRepository interface {
	// Create persists a new comment.
	Create(ctx context.Context, comment *domain.Comment) error

	// FindWithAuthor returns a single comment joined with the author's
	// display name, or ErrCommentNotFound.
	FindWithAuthor(ctx context.Context, id string) (*domain.CommentWithAuthor, error)

	// FindByClip returns all comments attached to a clip, oldest first.
	FindByClip(ctx context.Context, clipID string) ([]domain.CommentWithAuthor, error)

	// FindBySequence returns all comments attached to a sequence, oldest
	// first.
	FindBySequence(ctx context.Context, sequenceID string) ([]domain.CommentWithAuthor, error)

	// FindByProject returns the project-wide comments including replies,
	// oldest first.
	FindByProject(ctx context.Context, projectID string) ([]domain.CommentWithAuthor, error)

	// FindThread returns the parent comment followed by its replies.
	FindThread(ctx context.Context, parentID string) ([]domain.CommentWithAuthor, error)
}
