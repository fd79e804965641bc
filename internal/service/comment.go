package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
)

// CommentService creates and queries threaded comments tied to a clip,
// sequence, or project.
type CommentService struct {
	comments repository.CommentRepository
}

// NewCommentService creates a CommentService instance.
func NewCommentService(comments repository.CommentRepository) *CommentService {
	if comments == nil {
		panic("comment repository cannot be nil for CommentService")
	}
	return &CommentService{comments: comments}
}

// AddComment validates the author and target association, persists the
// comment, and returns it hydrated with the author's display info. A
// persistence failure leaves no partial state.
func (s *CommentService) AddComment(ctx context.Context, comment *domain.Comment) (*domain.CommentWithAuthor, error) {
	if comment == nil || comment.AuthorID == "" || comment.ProjectID == "" || comment.Content == "" {
		return nil, ErrInvalidComment
	}
	// A comment is scoped to exactly one target: a clip, a sequence, or
	// the project as a whole.
	if comment.ClipID != nil && comment.SequenceID != nil {
		return nil, ErrInvalidComment
	}

	comment.ID = uuid.NewString()
	if comment.Status == "" {
		comment.Status = domain.CommentStatusOpen
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"project_id": comment.ProjectID,
		"author_id":  comment.AuthorID,
	})

	if err := s.comments.Create(ctx, comment); err != nil {
		logCtx.WithError(err).Error("Failed to persist comment")
		return nil, fmt.Errorf("create comment: %w", err)
	}

	hydrated, err := s.comments.FindWithAuthor(ctx, comment.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hydrate comment with author info")
		return nil, fmt.Errorf("hydrate comment %s: %w", comment.ID, err)
	}
	logCtx.Debug("Comment created")
	return hydrated, nil
}

// CommentQuery scopes a comment listing. When multiple fields are set the
// narrowest wins: clip, then sequence, then project-wide.
type CommentQuery struct {
	ClipID     string
	SequenceID string
	ProjectID  string
}

// GetComments lists comments for the narrowest scope present in the query.
func (s *CommentService) GetComments(ctx context.Context, q CommentQuery) ([]domain.CommentWithAuthor, error) {
	switch {
	case q.ClipID != "":
		return s.comments.FindByClip(ctx, q.ClipID)
	case q.SequenceID != "":
		return s.comments.FindBySequence(ctx, q.SequenceID)
	case q.ProjectID != "":
		return s.comments.FindByProject(ctx, q.ProjectID)
	}
	return nil, ErrInvalidComment
}

// GetCommentThread returns a parent comment with its replies.
func (s *CommentService) GetCommentThread(ctx context.Context, parentID string) ([]domain.CommentWithAuthor, error) {
	if parentID == "" {
		return nil, ErrInvalidComment
	}
	return s.comments.FindThread(ctx, parentID)
}
