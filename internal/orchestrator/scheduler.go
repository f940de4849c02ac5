package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskdeck/taskdeck/internal/integration"
)

// Syncer runs one cross-provider sync pass.
type Syncer interface {
	SyncAll(ctx context.Context) []integration.SyncResult
}

// Scheduler drives periodic syncs until the context is canceled.
type Scheduler struct {
	Syncer   Syncer
	Interval time.Duration
}

func (s *Scheduler) Run(ctx context.Context) {
	if s.Syncer == nil || s.Interval <= 0 {
		return
	}

	// Run immediately at startup.
	logResults(s.Syncer.SyncAll(ctx))

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logResults(s.Syncer.SyncAll(ctx))
		}
	}
}

func logResults(results []integration.SyncResult) {
	for _, r := range results {
		if !r.Success {
			slog.Error("scheduled sync failed", "provider", r.Provider, "errors", r.Errors)
		}
	}
}
