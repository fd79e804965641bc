// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// CursorRepository is a mock implementation of repository.CursorRepository.
type CursorRepository struct {
	mock.Mock
}

func (m *CursorRepository) Upsert(ctx context.Context, cursor *domain.Cursor) error {
	args := m.Called(ctx, cursor)
	return args.Error(0)
}

func (m *CursorRepository) FindByUserSequence(ctx context.Context, userID, sequenceID string) (*domain.Cursor, error) {
	args := m.Called(ctx, userID, sequenceID)
	if c, ok := args.Get(0).(*domain.Cursor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CursorRepository) FindActiveBySequence(ctx context.Context, sequenceID string) ([]domain.Cursor, error) {
	args := m.Called(ctx, sequenceID)
	if c, ok := args.Get(0).([]domain.Cursor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CursorRepository) FindActiveByProject(ctx context.Context, projectID string) ([]domain.Cursor, error) {
	args := m.Called(ctx, projectID)
	if c, ok := args.Get(0).([]domain.Cursor); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CursorRepository) Deactivate(ctx context.Context, userID, sequenceID string) error {
	args := m.Called(ctx, userID, sequenceID)
	return args.Error(0)
}
