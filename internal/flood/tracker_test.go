package flood

import (
	"sync"
	"testing"
	"time"
)

func TestObserveUnderLimit(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(3*time.Minute, 10)
	now := time.Now()

	for i := 0; i < 10; i++ {
		d := tracker.Observe(1, now.Add(time.Duration(i)*time.Second))
		if d.OverLimit {
			t.Fatalf("message %d should not trip the limit", i+1)
		}
		if d.Count != i+1 {
			t.Fatalf("expected count %d, got %d", i+1, d.Count)
		}
	}
}

func TestObserveTripsAndClears(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(3*time.Minute, 10)
	now := time.Now()

	for i := 0; i < 10; i++ {
		tracker.Observe(1, now.Add(time.Duration(i)*time.Second))
	}

	d := tracker.Observe(1, now.Add(11*time.Second))
	if !d.OverLimit {
		t.Fatal("11th message inside the window should trip the limit")
	}
	if d.Count != 11 {
		t.Fatalf("expected count 11 at the trip point, got %d", d.Count)
	}

	// clear-on-trigger: the window is empty right after the trip
	if pending := tracker.Pending(1); pending != 0 {
		t.Fatalf("expected cleared window, got %d pending", pending)
	}

	// the next message starts a fresh window and does not re-fire
	d = tracker.Observe(1, now.Add(11*time.Second).Add(4*time.Minute))
	if d.OverLimit {
		t.Fatal("message after the window should start fresh")
	}
	if d.Count != 1 {
		t.Fatalf("expected fresh window count 1, got %d", d.Count)
	}
}

func TestObservePrunesOldEntries(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(3*time.Minute, 10)
	now := time.Now()

	// 10 old messages, then 10 more after the window has passed: no trip,
	// because the old ones are pruned on inspection.
	for i := 0; i < 10; i++ {
		tracker.Observe(1, now.Add(time.Duration(i)*time.Second))
	}
	later := now.Add(5 * time.Minute)
	for i := 0; i < 10; i++ {
		d := tracker.Observe(1, later.Add(time.Duration(i)*time.Second))
		if d.OverLimit {
			t.Fatalf("pruned window should not trip on message %d", i+1)
		}
	}
}

func TestObserveNoCrossUserInterference(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(3*time.Minute, 10)
	now := time.Now()

	for i := 0; i < 10; i++ {
		tracker.Observe(1, now)
		tracker.Observe(2, now)
	}
	if d := tracker.Observe(1, now); !d.OverLimit {
		t.Fatal("user 1 should trip the limit")
	}
	if d := tracker.Observe(2, now); !d.OverLimit {
		t.Fatal("user 2 should trip independently")
	}
	if d := tracker.Observe(3, now); d.OverLimit {
		t.Fatal("user 3 never posted enough to trip")
	}
}

func TestSweepDropsQuietUsers(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(3*time.Minute, 10)
	now := time.Now()

	tracker.Observe(1, now)
	tracker.Observe(2, now.Add(2*time.Minute))

	tracker.Sweep(now.Add(4 * time.Minute))

	if pending := tracker.Pending(1); pending != 0 {
		t.Fatalf("user 1 window should be swept, got %d", pending)
	}
	if pending := tracker.Pending(2); pending != 1 {
		t.Fatalf("user 2 window should survive the sweep, got %d", pending)
	}
}

func TestObserveConcurrent(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(time.Minute, 5)
	now := time.Now()

	const workers = 16

	var wg sync.WaitGroup
	trips := make([]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if d := tracker.Observe(int64(w), now.Add(time.Duration(i)*time.Millisecond)); d.OverLimit {
					trips[w]++
				}
			}
		}(w)
	}
	wg.Wait()

	// 100 observations with limit 5 and clear-on-trigger: the limit trips
	// every 6 messages, 16 times per user.
	for w, got := range trips {
		if got != 16 {
			t.Fatalf("user %d: expected 16 trips, got %d", w, got)
		}
	}
}
