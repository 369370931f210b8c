package limiter

import (
	"sync"
	"time"
)

// Memory is an in-process fixed-window limiter keyed by caller IP, used to
// throttle the polling endpoint. Counters are not persisted and reset on
// restart.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	window  time.Duration
	max     int
	now     func() time.Time
}

type memoryEntry struct {
	count       int
	windowStart time.Time
}

// NewMemory constructs an in-memory fixed-window limiter.
func NewMemory(window time.Duration, max int) *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

// SetNow overrides the clock; tests only.
func (l *Memory) SetNow(now func() time.Time) { l.now = now }

// Allow consumes one unit of the key's window budget. When denied it reports
// how long until the window resets.
func (l *Memory) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) > l.window {
		l.entries[key] = &memoryEntry{count: 1, windowStart: now}
		return true, 0
	}
	if e.count >= l.max {
		return false, e.windowStart.Add(l.window).Sub(now)
	}
	e.count++
	return true, 0
}

// Sweep drops entries with lapsed windows so the map stays bounded.
func (l *Memory) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for k, e := range l.entries {
		if now.Sub(e.windowStart) > l.window {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}
