package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
)

const (
	// conflictWindowMs is the proximity window for same-track clip
	// conflicts, in timeline milliseconds.
	conflictWindowMs = 1000.0

	// conflictShiftMs is how far a position-overlap resolution pushes the
	// incoming clip, duration preserved.
	conflictShiftMs = 1000.0

	// pendingOpTTL is how long a pending operation survives before the
	// garbage collector drops it, regardless of outcome.
	pendingOpTTL = 10 * time.Minute
)

// pendingEntry wraps an operation held in a room's pending set.
type pendingEntry struct {
	op      *domain.EditOperation
	addedAt time.Time
}

// CollaborationService resolves concurrent edit operations against the
// shared timeline and applies the accepted outcome. The pending sets are
// keyed by project; there is no cross-project coordination.
type CollaborationService struct {
	timeline repository.TimelineRepository

	mu      sync.Mutex
	pending map[string][]*pendingEntry
}

// NewCollaborationService creates a CollaborationService instance.
func NewCollaborationService(timeline repository.TimelineRepository) *CollaborationService {
	if timeline == nil {
		panic("timeline repository cannot be nil for CollaborationService")
	}
	return &CollaborationService{
		timeline: timeline,
		pending:  make(map[string][]*pendingEntry),
	}
}

// SubmitOperation runs the full submission pipeline: assign identity,
// detect conflicts against other users' pending operations, resolve, apply,
// and mark applied. A "reject" resolution is a normal result, not an error;
// a persistence failure returns the unapplied operation together with the
// error, and the caller must not broadcast.
func (s *CollaborationService) SubmitOperation(ctx context.Context, projectID string, op *domain.EditOperation) (*domain.EditOperation, *domain.ConflictResolution, error) {
	if err := validateOperation(projectID, op); err != nil {
		return nil, nil, err
	}

	op.ID = uuid.NewString()
	op.CreatedAt = time.Now().UTC()
	op.Applied = false
	if op.TargetID == "" {
		// Inserts may arrive without a target id; mint one so the new
		// entity is addressable by later operations.
		op.TargetID = uuid.NewString()
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"project_id":   projectID,
		"operation_id": op.ID,
		"author_id":    op.AuthorID,
		"kind":         op.Kind,
		"target_kind":  op.TargetKind,
		"target_id":    op.TargetID,
	})

	s.mu.Lock()
	conflicts := s.detectConflicts(projectID, op)
	s.pending[projectID] = append(s.pending[projectID], &pendingEntry{op: op, addedAt: op.CreatedAt})
	s.mu.Unlock()

	var resolution *domain.ConflictResolution
	if len(conflicts) > 0 {
		resolution = s.resolve(projectID, op, conflicts)
		logCtx.WithFields(logrus.Fields{
			"conflicts": len(conflicts),
			"category":  resolution.Category,
			"strategy":  resolution.Strategy,
		}).Info("Conflicts resolved")

		if resolution.Strategy == domain.ResolveReject {
			// Rejection is a normal outcome; the operation stays in the
			// pending set until the garbage collector drops it.
			return op, resolution, nil
		}
		if resolution.AdjustedPayload != nil {
			op.Payload = resolution.AdjustedPayload
		}
	}

	if err := s.apply(ctx, op); err != nil {
		logCtx.WithError(err).Error("Failed to apply operation")
		return op, resolution, fmt.Errorf("apply operation %s: %w", op.ID, err)
	}
	op.Applied = true
	logCtx.Debug("Operation applied")

	return op, resolution, nil
}

// validateOperation checks the closed kind sets and required fields.
func validateOperation(projectID string, op *domain.EditOperation) error {
	if op == nil || projectID == "" || op.AuthorID == "" {
		return ErrInvalidOperation
	}
	if !op.Kind.Valid() || !op.TargetKind.Valid() {
		return ErrInvalidOperation
	}
	if op.TargetID == "" && op.Kind != domain.OpInsert {
		return ErrInvalidOperation
	}
	return nil
}

// detectConflicts scans the room's pending set for operations from other
// users that collide with the incoming one. A user's own pending
// operations never conflict with each other, and already-applied
// operations are never conflict sources. Caller holds s.mu.
func (s *CollaborationService) detectConflicts(projectID string, op *domain.EditOperation) []*domain.EditOperation {
	var conflicts []*domain.EditOperation
	for _, entry := range s.pending[projectID] {
		other := entry.op
		if other.AuthorID == op.AuthorID || other.Applied {
			continue
		}
		if other.TargetKind == op.TargetKind && other.TargetID == op.TargetID {
			conflicts = append(conflicts, other)
			continue
		}
		if clipProximityConflict(op, other) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts
}

// clipProximityConflict reports whether two clip operations with defined
// positions land on the same track within the proximity window.
func clipProximityConflict(a, b *domain.EditOperation) bool {
	if a.TargetKind != domain.TargetClip || b.TargetKind != domain.TargetClip {
		return false
	}
	trackA, okA := a.TrackID()
	trackB, okB := b.TrackID()
	if !okA || !okB || trackA != trackB {
		return false
	}
	posA, okA := a.EffectivePosition()
	posB, okB := b.EffectivePosition()
	if !okA || !okB {
		return false
	}
	return math.Abs(posA-posB) <= conflictWindowMs
}

// resolve picks an outcome for the detected conflicts, by category:
// a pending delete of the same target is a resource conflict and rejects
// the incoming operation; other same-target conflicts resolve
// last-writer-wins, discarding the older pending operations unapplied;
// remaining same-track position overlaps merge by shifting the incoming
// clip later, duration preserved.
func (s *CollaborationService) resolve(projectID string, op *domain.EditOperation, conflicts []*domain.EditOperation) *domain.ConflictResolution {
	sameTarget := make([]*domain.EditOperation, 0, len(conflicts))
	for _, c := range conflicts {
		if c.TargetKind == op.TargetKind && c.TargetID == op.TargetID {
			if c.Kind == domain.OpDelete {
				return &domain.ConflictResolution{
					OperationID: op.ID,
					Category:    domain.ConflictResource,
					Strategy:    domain.ResolveReject,
				}
			}
			sameTarget = append(sameTarget, c)
		}
	}

	if len(sameTarget) > 0 {
		s.discardPending(projectID, sameTarget)
		return &domain.ConflictResolution{
			OperationID:     op.ID,
			Category:        domain.ConflictSameTarget,
			Strategy:        domain.ResolveLastWriteWins,
			AdjustedPayload: op.Payload,
		}
	}

	return &domain.ConflictResolution{
		OperationID:     op.ID,
		Category:        domain.ConflictPositionOverlap,
		Strategy:        domain.ResolveMergeShift,
		AdjustedPayload: shiftPayload(op, conflictShiftMs),
	}
}

// shiftPayload returns a copy of the operation payload with start/end moved
// later by delta milliseconds.
func shiftPayload(op *domain.EditOperation, delta float64) map[string]interface{} {
	adjusted := make(map[string]interface{}, len(op.Payload))
	for k, v := range op.Payload {
		adjusted[k] = v
	}
	if start, end, ok := op.ClipWindow(); ok {
		adjusted["start"] = start + delta
		adjusted["end"] = end + delta
	}
	if op.Position != nil {
		shifted := *op.Position + delta
		op.Position = &shifted
	}
	return adjusted
}

// discardPending removes the given operations from the project's pending
// set, never to be applied.
func (s *CollaborationService) discardPending(projectID string, ops []*domain.EditOperation) {
	drop := make(map[*domain.EditOperation]bool, len(ops))
	for _, op := range ops {
		drop[op] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.pending[projectID]
	kept := entries[:0]
	for _, entry := range entries {
		if !drop[entry.op] {
			kept = append(kept, entry)
		}
	}
	s.pending[projectID] = kept
}

// apply persists the operation by target kind.
func (s *CollaborationService) apply(ctx context.Context, op *domain.EditOperation) error {
	switch op.TargetKind {
	case domain.TargetClip:
		return s.applyClip(ctx, op)
	case domain.TargetTrack:
		return s.timeline.UpdateTrackFields(ctx, op.TargetID, op.Payload)
	case domain.TargetSequence:
		return s.timeline.UpdateSequenceFields(ctx, op.TargetID, op.Payload)
	}
	return ErrInvalidOperation
}

func (s *CollaborationService) applyClip(ctx context.Context, op *domain.EditOperation) error {
	switch op.Kind {
	case domain.OpUpdate:
		start, end, ok := op.ClipWindow()
		if !ok {
			return fmt.Errorf("%w: clip update requires start and end", ErrInvalidOperation)
		}
		return s.timeline.UpdateClipWindow(ctx, op.TargetID, start, end)

	case domain.OpMove:
		trackID, ok := op.TrackID()
		if !ok {
			return fmt.Errorf("%w: clip move requires track_id", ErrInvalidOperation)
		}
		start, end, ok := op.ClipWindow()
		if !ok {
			return fmt.Errorf("%w: clip move requires start and end", ErrInvalidOperation)
		}
		return s.timeline.MoveClip(ctx, op.TargetID, trackID, start, end)

	case domain.OpDelete:
		return s.timeline.DeleteClip(ctx, op.TargetID)

	case domain.OpInsert:
		clip := &domain.Clip{ID: op.TargetID}
		if start, end, ok := op.ClipWindow(); ok {
			clip.Start = start
			clip.End = end
		}
		if trackID, ok := op.TrackID(); ok {
			clip.TrackID = trackID
		}
		if name, ok := op.Payload["name"].(string); ok {
			clip.Name = name
		}
		if mediaID, ok := op.Payload["media_id"].(string); ok {
			clip.MediaID = mediaID
		}
		if sequenceID, ok := op.Payload["sequence_id"].(string); ok {
			clip.SequenceID = sequenceID
		}
		return s.timeline.CreateClip(ctx, clip)
	}
	return ErrInvalidOperation
}

// CollectExpiredOperations drops pending operations older than the TTL.
// Returns the number removed.
func (s *CollaborationService) CollectExpiredOperations() int {
	cutoff := time.Now().Add(-pendingOpTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for projectID, entries := range s.pending {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.addedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(s.pending, projectID)
		} else {
			s.pending[projectID] = kept
		}
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("Collected expired pending operations")
	}
	return removed
}

// PendingCount returns the size of a project's pending set.
func (s *CollaborationService) PendingCount(projectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[projectID])
}

// addPending inserts an operation into the pending set directly, bypassing
// the submission pipeline. Used by tests to model the window between a
// peer's conflict check and its persistence.
func (s *CollaborationService) addPending(projectID string, op *domain.EditOperation, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[projectID] = append(s.pending[projectID], &pendingEntry{op: op, addedAt: at})
}
