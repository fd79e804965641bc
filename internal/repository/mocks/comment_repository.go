package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// CommentRepository is a mock implementation of repository.CommentRepository.
type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepository) FindWithAuthor(ctx context.Context, id string) (*domain.CommentWithAuthor, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.CommentWithAuthor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) FindByClip(ctx context.Context, clipID string) ([]domain.CommentWithAuthor, error) {
	args := m.Called(ctx, clipID)
	if c, ok := args.Get(0).([]domain.CommentWithAuthor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) FindBySequence(ctx context.Context, sequenceID string) ([]domain.CommentWithAuthor, error) {
	args := m.Called(ctx, sequenceID)
	if c, ok := args.Get(0).([]domain.CommentWithAuthor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) FindByProject(ctx context.Context, projectID string) ([]domain.CommentWithAuthor, error) {
	args := m.Called(ctx, projectID)
	if c, ok := args.Get(0).([]domain.CommentWithAuthor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) FindThread(ctx context.Context, parentID string) ([]domain.CommentWithAuthor, error) {
	args := m.Called(ctx, parentID)
	if c, ok := args.Get(0).([]domain.CommentWithAuthor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
