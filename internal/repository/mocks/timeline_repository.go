package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// TimelineRepository is a mock implementation of
// repository.TimelineRepository.
type TimelineRepository struct {
	mock.Mock
}

func (m *TimelineRepository) GetClip(ctx context.Context, id string) (*domain.Clip, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.Clip); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimelineRepository) CreateClip(ctx context.Context, clip *domain.Clip) error {
	args := m.Called(ctx, clip)
	return args.Error(0)
}

func (m *TimelineRepository) UpdateClipWindow(ctx context.Context, id string, start, end float64) error {
	args := m.Called(ctx, id, start, end)
	return args.Error(0)
}

func (m *TimelineRepository) MoveClip(ctx context.Context, id, trackID string, start, end float64) error {
	args := m.Called(ctx, id, trackID, start, end)
	return args.Error(0)
}

func (m *TimelineRepository) DeleteClip(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TimelineRepository) UpdateTrackFields(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *TimelineRepository) UpdateSequenceFields(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}
