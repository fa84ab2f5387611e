package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/expiry"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/wizard"
)

const maxSessionCleanupInterval = time.Minute

type BackgroundTasks struct {
	Scheduler *expiry.Scheduler
	Sessions  *wizard.Registry
	Logger    *slog.Logger
}

func NewBackgroundTasks(scheduler *expiry.Scheduler, sessions *wizard.Registry, logger *slog.Logger) *BackgroundTasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackgroundTasks{
		Scheduler: scheduler,
		Sessions:  sessions,
		Logger:    logger,
	}
}

// StartAll launches the workers; they stop when ctx is cancelled. The returned channel is
// closed once every worker has returned.
func (bt *BackgroundTasks) StartAll(ctx context.Context, sessionTTL time.Duration) <-chan struct{} {
	done := make(chan struct{})
	schedulerDone := make(chan struct{})

	go func() {
		defer close(schedulerDone)
		bt.Scheduler.Run(ctx)
	}()
	go func() {
		bt.startSessionCleanup(ctx, cleanupInterval(sessionTTL))
		<-schedulerDone
		close(done)
	}()
	return done
}

func (bt *BackgroundTasks) startSessionCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := bt.Sessions.Cleanup(); removed > 0 {
				bt.Logger.Debug("dropped idle negotiation sessions", "count", removed)
			}
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > maxSessionCleanupInterval {
		return maxSessionCleanupInterval
	}
	return ttl
}
