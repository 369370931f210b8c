package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

type countingStore struct {
	pruneCalls atomic.Int64
}

func (c *countingStore) Create(context.Context, uuid.UUID, string) (*model.AuthRequest, error) {
	return nil, nil
}
func (c *countingStore) Get(context.Context, uuid.UUID) (*model.AuthRequest, error) {
	return nil, nil
}
func (c *countingStore) MarkVerified(context.Context, uuid.UUID, string) error { return nil }
func (c *countingStore) Consume(context.Context, uuid.UUID) (string, string, error) {
	return "", "", nil
}
func (c *countingStore) Delete(context.Context, uuid.UUID) error { return nil }
func (c *countingStore) PruneExpired(context.Context) (int64, error) {
	c.pruneCalls.Add(1)
	return 1, nil
}

type countingLimiter struct {
	pruneCalls atomic.Int64
}

func (c *countingLimiter) CheckAndIncrement(context.Context, string) (model.RateLimitResult, error) {
	return model.RateLimitResult{Allowed: true}, nil
}
func (c *countingLimiter) Decrement(context.Context, string) error { return nil }
func (c *countingLimiter) PruneStale(context.Context) (int64, error) {
	c.pruneCalls.Add(1)
	return 1, nil
}

func TestSchedulerSweepsBothStores(t *testing.T) {
	t.Parallel()
	store := &countingStore{}
	lim := &countingLimiter{}
	s := New(store, lim, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.pruneCalls.Load() < 2 || lim.pruneCalls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeps did not run: store=%d limiter=%d",
				store.pruneCalls.Load(), lim.pruneCalls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit on cancel")
	}
}
