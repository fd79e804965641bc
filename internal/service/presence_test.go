package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
	"github.com/chong-myung/collabcut-sub001/internal/repository/mocks"
)

func TestUpdateCursorFirstContactAssignsFirstColor(t *testing.T) {
	cursors := new(mocks.CursorRepository)
	presence := new(mocks.PresenceRepository)

	presence.On("GetColor", mock.Anything, "proj-1", "alice").Return("", repository.ErrColorNotFound).Once()
	presence.On("ProjectColors", mock.Anything, "proj-1").Return(map[string]string{}, nil).Once()
	presence.On("AssignColor", mock.Anything, "proj-1", "alice", cursorPalette[0]).Return(nil).Once()
	cursors.On("FindByUserSequence", mock.Anything, "alice", "seq-1").Return(nil, repository.ErrCursorNotFound).Once()
	cursors.On("Upsert", mock.Anything, mock.MatchedBy(func(c *domain.Cursor) bool {
		return c.UserID == "alice" && c.Color == cursorPalette[0] && c.Active && c.Position == 1500
	})).Return(nil).Once()
	presence.On("SetPresence", mock.Anything, mock.MatchedBy(func(p *domain.UserPresence) bool {
		return p.UserID == "alice" && p.Status == domain.PresenceOnline
	})).Return(nil).Once()

	svc := NewPresenceService(cursors, presence)
	cursor, err := svc.UpdateCursor(context.Background(), "alice", "proj-1", "seq-1", 1500, "editing")
	require.NoError(t, err)
	assert.Equal(t, cursorPalette[0], cursor.Color)
	assert.NotEmpty(t, cursor.ID)

	cursors.AssertExpectations(t)
	presence.AssertExpectations(t)
}

func TestUpdateCursorSecondUserGetsDistinctColor(t *testing.T) {
	cursors := new(mocks.CursorRepository)
	presence := new(mocks.PresenceRepository)

	presence.On("GetColor", mock.Anything, "proj-1", "bob").Return("", repository.ErrColorNotFound).Once()
	presence.On("ProjectColors", mock.Anything, "proj-1").Return(map[string]string{"alice": cursorPalette[0]}, nil).Once()
	presence.On("AssignColor", mock.Anything, "proj-1", "bob", cursorPalette[1]).Return(nil).Once()
	cursors.On("FindByUserSequence", mock.Anything, "bob", "seq-1").Return(nil, repository.ErrCursorNotFound).Once()
	cursors.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
	presence.On("SetPresence", mock.Anything, mock.Anything).Return(nil).Once()

	svc := NewPresenceService(cursors, presence)
	cursor, err := svc.UpdateCursor(context.Background(), "bob", "proj-1", "seq-1", 0, "")
	require.NoError(t, err)
	assert.Equal(t, cursorPalette[1], cursor.Color)
	assert.NotEqual(t, cursorPalette[0], cursor.Color)
}

func TestUpdateCursorReusesExistingColor(t *testing.T) {
	cursors := new(mocks.CursorRepository)
	presence := new(mocks.PresenceRepository)

	presence.On("GetColor", mock.Anything, "proj-1", "alice").Return(cursorPalette[2], nil).Once()
	existing := &domain.Cursor{ID: "cur-1", UserID: "alice", SequenceID: "seq-1", Color: cursorPalette[2]}
	cursors.On("FindByUserSequence", mock.Anything, "alice", "seq-1").Return(existing, nil).Once()
	cursors.On("Upsert", mock.Anything, existing).Return(nil).Once()
	presence.On("SetPresence", mock.Anything, mock.Anything).Return(nil).Once()

	svc := NewPresenceService(cursors, presence)
	cursor, err := svc.UpdateCursor(context.Background(), "alice", "proj-1", "seq-1", 4200, "viewing")
	require.NoError(t, err)
	assert.Equal(t, "cur-1", cursor.ID)
	assert.Equal(t, cursorPalette[2], cursor.Color)
	assert.Equal(t, 4200.0, cursor.Position)

	presence.AssertNotCalled(t, "AssignColor", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPickColorWrapsWhenPaletteExhausted(t *testing.T) {
	taken := make(map[string]string, len(cursorPalette))
	for i, c := range cursorPalette {
		taken[string(rune('a'+i))] = c
	}
	// Every slot taken: the next assignment recycles by count.
	assert.Equal(t, cursorPalette[0], pickColor(taken))

	taken["extra"] = cursorPalette[0]
	assert.Equal(t, cursorPalette[1], pickColor(taken))
}

func TestPickColorSkipsUsedSlots(t *testing.T) {
	taken := map[string]string{
		"alice": cursorPalette[0],
		"bob":   cursorPalette[2],
	}
	assert.Equal(t, cursorPalette[1], pickColor(taken))
}

func TestUpdateCursorPresenceFailureIsNonFatal(t *testing.T) {
	cursors := new(mocks.CursorRepository)
	presence := new(mocks.PresenceRepository)

	presence.On("GetColor", mock.Anything, "proj-1", "alice").Return(cursorPalette[0], nil).Once()
	cursors.On("FindByUserSequence", mock.Anything, "alice", "seq-1").Return(nil, repository.ErrCursorNotFound).Once()
	cursors.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
	presence.On("SetPresence", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	svc := NewPresenceService(cursors, presence)
	cursor, err := svc.UpdateCursor(context.Background(), "alice", "proj-1", "seq-1", 100, "")
	require.NoError(t, err)
	assert.NotNil(t, cursor)
}

func TestUpdateCursorValidation(t *testing.T) {
	svc := NewPresenceService(new(mocks.CursorRepository), new(mocks.PresenceRepository))

	_, err := svc.UpdateCursor(context.Background(), "", "proj-1", "seq-1", 0, "")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = svc.UpdateCursor(context.Background(), "alice", "proj-1", "", 0, "")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDeactivateCursorsMarksAway(t *testing.T) {
	cursors := new(mocks.CursorRepository)
	presence := new(mocks.PresenceRepository)

	cursors.On("Deactivate", mock.Anything, "alice", "").Return(nil).Once()
	presence.On("SetPresence", mock.Anything, mock.MatchedBy(func(p *domain.UserPresence) bool {
		return p.UserID == "alice" && p.Status == domain.PresenceAway
	})).Return(nil).Once()

	svc := NewPresenceService(cursors, presence)
	require.NoError(t, svc.DeactivateCursors(context.Background(), "alice", "proj-1", ""))

	cursors.AssertExpectations(t)
	presence.AssertExpectations(t)
}

func TestSweepStalePresence(t *testing.T) {
	cursors := new(mocks.CursorRepository)
	presence := new(mocks.PresenceRepository)
	presence.On("SweepStale", mock.Anything, presenceStaleAfter).Return(3, nil).Once()

	svc := NewPresenceService(cursors, presence)
	removed, err := svc.SweepStalePresence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}
