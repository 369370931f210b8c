// Package cleanup runs the periodic sweep of expired durable records.
package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/limiter"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/repository"
)

// Scheduler prunes expired auth requests and lapsed rate-limit windows on a
// fixed interval. Overlapping runs are safe: both prunes are idempotent
// deletes.
type Scheduler struct {
	requests repository.AuthRequestStore
	lim      limiter.Email
	interval time.Duration
	log      *zap.Logger
}

// New constructs a Scheduler.
func New(requests repository.AuthRequestStore, lim limiter.Email, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{requests: requests, lim: lim, interval: interval, log: log}
}

// Run sweeps until ctx is cancelled. Call in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	requests, err := s.requests.PruneExpired(ctx)
	if err != nil {
		s.log.Error("prune auth requests", zap.Error(err))
	}
	windows, err := s.lim.PruneStale(ctx)
	if err != nil {
		s.log.Error("prune rate limits", zap.Error(err))
	}
	if requests > 0 || windows > 0 {
		s.log.Info("cleanup sweep",
			zap.Int64("auth_requests", requests),
			zap.Int64("rate_limits", windows),
		)
	}
}
