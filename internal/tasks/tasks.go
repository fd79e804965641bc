// Package tasks defines the background task types shared by the scheduler
// and the worker.
package tasks

const (
	// TypePresenceSweep marks stale presence records as away and releases
	// their cursor colors.
	TypePresenceSweep = "presence:sweep"

	// TypePendingOpsGC drops pending edit operations past their retention
	// window.
	TypePendingOpsGC = "ops:gc"
)
