package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// PresenceRepository is a mock implementation of
// repository.PresenceRepository.
type PresenceRepository struct {
	mock.Mock
}

func (m *PresenceRepository) SetPresence(ctx context.Context, presence *domain.UserPresence) error {
	args := m.Called(ctx, presence)
	return args.Error(0)
}

func (m *PresenceRepository) GetProjectPresence(ctx context.Context, projectID string) ([]domain.UserPresence, error) {
	args := m.Called(ctx, projectID)
	if p, ok := args.Get(0).([]domain.UserPresence); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PresenceRepository) RemovePresence(ctx context.Context, projectID, userID string) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *PresenceRepository) SweepStale(ctx context.Context, maxAge time.Duration) (int, error) {
	args := m.Called(ctx, maxAge)
	return args.Int(0), args.Error(1)
}

func (m *PresenceRepository) GetColor(ctx context.Context, projectID, userID string) (string, error) {
	args := m.Called(ctx, projectID, userID)
	return args.String(0), args.Error(1)
}

func (m *PresenceRepository) ProjectColors(ctx context.Context, projectID string) (map[string]string, error) {
	args := m.Called(ctx, projectID)
	if c, ok := args.Get(0).(map[string]string); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PresenceRepository) AssignColor(ctx context.Context, projectID, userID, color string) error {
	args := m.Called(ctx, projectID, userID, color)
	return args.Error(0)
}

func (m *PresenceRepository) ReleaseColor(ctx context.Context, projectID, userID string) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *PresenceRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *PresenceRepository) PublishEvent(ctx context.Context, projectID string, msg *domain.Message) error {
	args := m.Called(ctx, projectID, msg)
	return args.Error(0)
}
