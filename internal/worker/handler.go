package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/service"
)

// PresenceSweepHandler marks presence records stale past the service
// threshold as away.
type PresenceSweepHandler struct {
	presenceService *service.PresenceService
}

// NewPresenceSweepHandler creates a PresenceSweepHandler instance.
func NewPresenceSweepHandler(presenceService *service.PresenceService) *PresenceSweepHandler {
	return &PresenceSweepHandler{presenceService: presenceService}
}

// ProcessTask implements asynq.Handler.
func (h *PresenceSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	swept, err := h.presenceService.SweepStalePresence(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Presence sweep failed")
		return err
	}

	if swept > 0 {
		logCtx.WithField("swept", swept).Info("Presence sweep completed")
	}
	return nil
}

// PendingOpsGCHandler evicts pending edit operations older than the
// retention window.
type PendingOpsGCHandler struct {
	collabService *service.CollaborationService
}

// NewPendingOpsGCHandler creates a PendingOpsGCHandler instance.
func NewPendingOpsGCHandler(collabService *service.CollaborationService) *PendingOpsGCHandler {
	return &PendingOpsGCHandler{collabService: collabService}
}

// ProcessTask implements asynq.Handler.
func (h *PendingOpsGCHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	expired := h.collabService.CollectExpiredOperations()
	if expired > 0 {
		logCtx.WithField("expired", expired).Info("Pending operation GC completed")
	}
	return nil
}
