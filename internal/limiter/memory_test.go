package limiter

import (
	"testing"
	"time"
)

func TestMemoryFixedWindow(t *testing.T) {
	t.Parallel()
	l := NewMemory(time.Minute, 3)
	now := time.Unix(1_700_000_000, 0)
	l.SetNow(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow("1.2.3.4"); !ok {
			t.Fatalf("call %d: want allowed", i+1)
		}
	}
	ok, retry := l.Allow("1.2.3.4")
	if ok {
		t.Fatal("want denied after limit")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("retry hint out of range: %v", retry)
	}

	// Another key is unaffected.
	if ok, _ := l.Allow("5.6.7.8"); !ok {
		t.Fatal("other key should be allowed")
	}

	// Window lapse resets the counter.
	now = now.Add(time.Minute + time.Second)
	if ok, _ := l.Allow("1.2.3.4"); !ok {
		t.Fatal("want allowed after window lapse")
	}
}

func TestMemorySweep(t *testing.T) {
	t.Parallel()
	l := NewMemory(time.Minute, 3)
	now := time.Unix(1_700_000_000, 0)
	l.SetNow(func() time.Time { return now })

	l.Allow("a")
	l.Allow("b")

	now = now.Add(2 * time.Minute)
	l.Allow("c")

	if removed := l.Sweep(); removed != 2 {
		t.Fatalf("Sweep: want 2 removed, got %d", removed)
	}
	if removed := l.Sweep(); removed != 0 {
		t.Fatalf("second Sweep: want 0 removed, got %d", removed)
	}
}
