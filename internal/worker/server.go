// Package worker runs the asynq server processing the periodic
// collaboration maintenance tasks.
package worker

import (
	"context"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/service"
	"github.com/chong-myung/collabcut-sub001/internal/tasks"
)

// WorkerServer wraps the asynq server lifecycle.
type WorkerServer struct {
	server          *asynq.Server
	log             *logrus.Entry
	presenceService *service.PresenceService
	collabService   *service.CollaborationService
}

// NewWorkerServer creates a WorkerServer instance.
func NewWorkerServer(redisOpt asynq.RedisClientOpt, presenceService *service.PresenceService, collabService *service.CollaborationService, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:          server,
		log:             logEntry,
		presenceService: presenceService,
		collabService:   collabService,
	}
}

// Start runs the worker server. It should run in its own goroutine.
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePresenceSweep, NewPresenceSweepHandler(ws.presenceService).ProcessTask)
	mux.HandleFunc(tasks.TypePendingOpsGC, NewPendingOpsGCHandler(ws.collabService).ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		} else {
			ws.log.Info("Worker server stopped.")
		}
	}
}

// Shutdown gracefully stops the worker server.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
