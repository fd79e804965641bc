// Package service holds the collaboration business logic: presence and
// cursor tracking, conflict resolution, and comments.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
)

// cursorPalette is the fixed set of colors handed out to concurrent users
// of a project. Slots are allocated lowest-index-first; once every slot is
// taken, colors wrap around by assignment count.
var cursorPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8",
	"#F7DC6F", "#BB8FCE", "#85C1E9", "#F08080", "#82E0AA",
}

// presenceStaleAfter is the staleness window for the periodic presence
// sweep.
const presenceStaleAfter = 5 * time.Minute

// PresenceService tracks per-user cursors and coarse presence status.
type PresenceService struct {
	cursors  repository.CursorRepository
	presence repository.PresenceRepository
}

// NewPresenceService creates a PresenceService instance.
func NewPresenceService(cursors repository.CursorRepository, presence repository.PresenceRepository) *PresenceService {
	if cursors == nil || presence == nil {
		panic("all repositories must be non-nil for PresenceService")
	}
	return &PresenceService{cursors: cursors, presence: presence}
}

// UpdateCursor upserts the user's cursor for the sequence, assigning a
// color on first contact with the project, and marks the user's presence
// active. The returned cursor carries the assigned color.
func (s *PresenceService) UpdateCursor(ctx context.Context, userID, projectID, sequenceID string, position float64, activity string) (*domain.Cursor, error) {
	if userID == "" || projectID == "" || sequenceID == "" {
		return nil, ErrInvalidCursor
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"project_id":  projectID,
		"sequence_id": sequenceID,
	})

	color, err := s.resolveColor(ctx, projectID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to resolve cursor color")
		return nil, err
	}

	cursor, err := s.cursors.FindByUserSequence(ctx, userID, sequenceID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logCtx.WithError(err).Error("Failed to load existing cursor")
			return nil, fmt.Errorf("load cursor: %w", err)
		}
		cursor = &domain.Cursor{
			ID:         uuid.NewString(),
			UserID:     userID,
			SequenceID: sequenceID,
		}
	}
	cursor.ProjectID = projectID
	cursor.Position = position
	cursor.Color = color
	cursor.Activity = activity
	cursor.Active = true

	if err := s.cursors.Upsert(ctx, cursor); err != nil {
		logCtx.WithError(err).Error("Failed to upsert cursor")
		return nil, fmt.Errorf("upsert cursor: %w", err)
	}

	if err := s.presence.SetPresence(ctx, &domain.UserPresence{
		UserID:       userID,
		ProjectID:    projectID,
		SequenceID:   sequenceID,
		Status:       domain.PresenceOnline,
		LastActivity: time.Now().UTC(),
	}); err != nil {
		// Presence is transient state; the cursor move itself succeeded.
		logCtx.WithError(err).Warn("Failed to refresh presence")
	}

	return cursor, nil
}

// resolveColor reuses the user's existing project color or allocates the
// lowest-index unused palette slot.
func (s *PresenceService) resolveColor(ctx context.Context, projectID, userID string) (string, error) {
	color, err := s.presence.GetColor(ctx, projectID, userID)
	if err == nil {
		return color, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("get color: %w", err)
	}

	taken, err := s.presence.ProjectColors(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("list project colors: %w", err)
	}
	color = pickColor(taken)
	if err := s.presence.AssignColor(ctx, projectID, userID, color); err != nil {
		return "", fmt.Errorf("assign color: %w", err)
	}
	return color, nil
}

// pickColor returns the lowest-index palette color not in use, wrapping by
// assignment count when the palette is exhausted.
func pickColor(taken map[string]string) string {
	used := make(map[string]bool, len(taken))
	for _, c := range taken {
		used[c] = true
	}
	for _, c := range cursorPalette {
		if !used[c] {
			return c
		}
	}
	return cursorPalette[len(taken)%len(cursorPalette)]
}

// DeactivateCursors marks the user's cursors inactive (all of them when
// sequenceID is empty) and moves the user's presence to away. Calling it
// again for an already-deactivated user changes nothing.
func (s *PresenceService) DeactivateCursors(ctx context.Context, userID, projectID, sequenceID string) error {
	if userID == "" {
		return ErrInvalidCursor
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"project_id":  projectID,
		"sequence_id": sequenceID,
	})

	if err := s.cursors.Deactivate(ctx, userID, sequenceID); err != nil {
		logCtx.WithError(err).Error("Failed to deactivate cursors")
		return fmt.Errorf("deactivate cursors: %w", err)
	}

	if projectID != "" {
		if err := s.presence.SetPresence(ctx, &domain.UserPresence{
			UserID:       userID,
			ProjectID:    projectID,
			SequenceID:   sequenceID,
			Status:       domain.PresenceAway,
			LastActivity: time.Now().UTC(),
		}); err != nil {
			logCtx.WithError(err).Warn("Failed to mark presence away")
		}
	}
	return nil
}

// GetActiveCursors returns the active cursors within a sequence.
func (s *PresenceService) GetActiveCursors(ctx context.Context, sequenceID string) ([]domain.Cursor, error) {
	return s.cursors.FindActiveBySequence(ctx, sequenceID)
}

// GetProjectCursors returns the active cursors within a project.
func (s *PresenceService) GetProjectCursors(ctx context.Context, projectID string) ([]domain.Cursor, error) {
	return s.cursors.FindActiveByProject(ctx, projectID)
}

// GetProjectPresence returns the presence records for a project.
func (s *PresenceService) GetProjectPresence(ctx context.Context, projectID string) ([]domain.UserPresence, error) {
	return s.presence.GetProjectPresence(ctx, projectID)
}

// SweepStalePresence purges presence entries idle beyond the staleness
// window, independent of explicit disconnects.
func (s *PresenceService) SweepStalePresence(ctx context.Context) (int, error) {
	removed, err := s.presence.SweepStale(ctx, presenceStaleAfter)
	if err != nil {
		return 0, fmt.Errorf("sweep stale presence: %w", err)
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("Swept stale presence entries")
	}
	return removed, nil
}
