package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository/mocks"
)

func clipInsert(author, trackID string, start, end float64) *domain.EditOperation {
	return &domain.EditOperation{
		Kind:       domain.OpInsert,
		TargetKind: domain.TargetClip,
		AuthorID:   author,
		Payload: map[string]interface{}{
			"track_id":    trackID,
			"start":       start,
			"end":         end,
			"sequence_id": "seq-1",
		},
	}
}

func clipUpdate(author, targetID string, start, end float64) *domain.EditOperation {
	return &domain.EditOperation{
		Kind:       domain.OpUpdate,
		TargetKind: domain.TargetClip,
		TargetID:   targetID,
		AuthorID:   author,
		Payload: map[string]interface{}{
			"start": start,
			"end":   end,
		},
	}
}

func TestSubmitOperationNonConflictingApplyDirectly(t *testing.T) {
	timeline := new(mocks.TimelineRepository)
	timeline.On("CreateClip", mock.Anything, mock.Anything).Return(nil).Twice()
	svc := NewCollaborationService(timeline)

	applied1, res1, err := svc.SubmitOperation(context.Background(), "proj-1", clipInsert("alice", "track-1", 0, 1000))
	require.NoError(t, err)
	assert.Nil(t, res1)
	assert.True(t, applied1.Applied)

	// Same window on a different track is not a conflict.
	applied2, res2, err := svc.SubmitOperation(context.Background(), "proj-1", clipInsert("bob", "track-2", 0, 1000))
	require.NoError(t, err)
	assert.Nil(t, res2)
	assert.True(t, applied2.Applied)

	timeline.AssertExpectations(t)
}

func TestSubmitOperationSameTargetLastWriteWins(t *testing.T) {
	timeline := new(mocks.TimelineRepository)
	timeline.On("UpdateClipWindow", mock.Anything, "clip-1", 4000.0, 6000.0).Return(nil).Once()
	svc := NewCollaborationService(timeline)

	// A peer's conflicting update sits unapplied in the pending set,
	// caught between its conflict check and its persistence.
	pending := clipUpdate("bob", "clip-1", 2000, 3000)
	pending.ID = "op-bob"
	svc.addPending("proj-1", pending, time.Now())

	applied, res, err := svc.SubmitOperation(context.Background(), "proj-1", clipUpdate("alice", "clip-1", 4000, 6000))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, domain.ConflictSameTarget, res.Category)
	assert.Equal(t, domain.ResolveLastWriteWins, res.Strategy)
	assert.True(t, applied.Applied)

	// The older pending operation was discarded, only the winner remains.
	assert.Equal(t, 1, svc.PendingCount("proj-1"))
	timeline.AssertExpectations(t)
}

func TestSubmitOperationPositionOverlapMergeShift(t *testing.T) {
	timeline := new(mocks.TimelineRepository)
	timeline.On("CreateClip", mock.Anything, mock.MatchedBy(func(clip *domain.Clip) bool {
		return clip.Start == 2500 && clip.End == 3500 && clip.TrackID == "track-1"
	})).Return(nil).Once()
	svc := NewCollaborationService(timeline)

	pending := clipInsert("bob", "track-1", 1000, 3000)
	pending.ID = "op-bob"
	pending.TargetID = "clip-bob"
	svc.addPending("proj-1", pending, time.Now())

	applied, res, err := svc.SubmitOperation(context.Background(), "proj-1", clipInsert("alice", "track-1", 1500, 2500))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, domain.ConflictPositionOverlap, res.Category)
	assert.Equal(t, domain.ResolveMergeShift, res.Strategy)
	assert.True(t, applied.Applied)

	// Shifted later by the conflict window, duration preserved.
	start, end, ok := applied.ClipWindow()
	require.True(t, ok)
	assert.Equal(t, 2500.0, start)
	assert.Equal(t, 3500.0, end)

	timeline.AssertExpectations(t)
}

func TestSubmitOperationPendingDeleteRejects(t *testing.T) {
	timeline := new(mocks.TimelineRepository)
	svc := NewCollaborationService(timeline)

	pendingDelete := &domain.EditOperation{
		ID:         "op-bob",
		Kind:       domain.OpDelete,
		TargetKind: domain.TargetClip,
		TargetID:   "clip-1",
		AuthorID:   "bob",
	}
	svc.addPending("proj-1", pendingDelete, time.Now())

	applied, res, err := svc.SubmitOperation(context.Background(), "proj-1", clipUpdate("alice", "clip-1", 4000, 6000))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, domain.ConflictResource, res.Category)
	assert.Equal(t, domain.ResolveReject, res.Strategy)
	assert.False(t, applied.Applied)

	// Nothing was persisted for the rejected operation.
	timeline.AssertNotCalled(t, "UpdateClipWindow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitOperationSameAuthorNeverConflicts(t *testing.T) {
	timeline := new(mocks.TimelineRepository)
	timeline.On("UpdateClipWindow", mock.Anything, "clip-1", 4000.0, 6000.0).Return(nil).Once()
	svc := NewCollaborationService(timeline)

	pending := clipUpdate("alice", "clip-1", 2000, 3000)
	pending.ID = "op-alice-1"
	svc.addPending("proj-1", pending, time.Now())

	_, res, err := svc.SubmitOperation(context.Background(), "proj-1", clipUpdate("alice", "clip-1", 4000, 6000))
	require.NoError(t, err)
	assert.Nil(t, res)
	timeline.AssertExpectations(t)
}

func TestSubmitOperationPersistenceFailureLeavesUnapplied(t *testing.T) {
	timeline := new(mocks.TimelineRepository)
	timeline.On("UpdateClipWindow", mock.Anything, "clip-1", 4000.0, 6000.0).Return(errors.New("db down")).Once()
	svc := NewCollaborationService(timeline)

	applied, _, err := svc.SubmitOperation(context.Background(), "proj-1", clipUpdate("alice", "clip-1", 4000, 6000))
	require.Error(t, err)
	require.NotNil(t, applied)
	assert.False(t, applied.Applied)
}

func TestSubmitOperationValidation(t *testing.T) {
	svc := NewCollaborationService(new(mocks.TimelineRepository))

	cases := []struct {
		name string
		op   *domain.EditOperation
	}{
		{"nil op", nil},
		{"no author", &domain.EditOperation{Kind: domain.OpUpdate, TargetKind: domain.TargetClip, TargetID: "clip-1"}},
		{"bad kind", &domain.EditOperation{Kind: "explode", TargetKind: domain.TargetClip, TargetID: "clip-1", AuthorID: "alice"}},
		{"bad target kind", &domain.EditOperation{Kind: domain.OpUpdate, TargetKind: "marker", TargetID: "m-1", AuthorID: "alice"}},
		{"no target for update", &domain.EditOperation{Kind: domain.OpUpdate, TargetKind: domain.TargetClip, AuthorID: "alice"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.SubmitOperation(context.Background(), "proj-1", tc.op)
			assert.ErrorIs(t, err, ErrInvalidOperation)
		})
	}
}

func TestCollectExpiredOperations(t *testing.T) {
	svc := NewCollaborationService(new(mocks.TimelineRepository))

	old := clipUpdate("bob", "clip-1", 0, 1000)
	old.ID = "op-old"
	svc.addPending("proj-1", old, time.Now().Add(-pendingOpTTL-time.Minute))

	fresh := clipUpdate("bob", "clip-2", 0, 1000)
	fresh.ID = "op-fresh"
	svc.addPending("proj-1", fresh, time.Now())

	removed := svc.CollectExpiredOperations()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, svc.PendingCount("proj-1"))
}

func TestPendingSetsAreProjectScoped(t *testing.T) {
	timeline := new(mocks.TimelineRepository)
	timeline.On("UpdateClipWindow", mock.Anything, "clip-1", 4000.0, 6000.0).Return(nil).Once()
	svc := NewCollaborationService(timeline)

	// The same target pending in another project is invisible here.
	pending := clipUpdate("bob", "clip-1", 2000, 3000)
	pending.ID = "op-bob"
	svc.addPending("proj-2", pending, time.Now())

	_, res, err := svc.SubmitOperation(context.Background(), "proj-1", clipUpdate("alice", "clip-1", 4000, 6000))
	require.NoError(t, err)
	assert.Nil(t, res)
	timeline.AssertExpectations(t)
}
