package flood

import (
	"sync"
	"time"
)

const shardCount = 32

// Decision is the outcome of observing one message.
type Decision struct {
	OverLimit bool
	Count     int
}

type shard struct {
	mutex sync.Mutex
	seen  map[int64][]time.Time
}

// Tracker keeps a trailing window of message timestamps per user and
// reports when a user exceeds the limit inside the window.
//
// State is in-memory only and lost on restart, by design: a flood burst
// is not a consequence a user should carry across deployments.
type Tracker struct {
	window time.Duration
	limit  int
	shards [shardCount]*shard
}

func NewTracker(window time.Duration, limit int) *Tracker {
	t := &Tracker{
		window: window,
		limit:  limit,
	}
	for i := range t.shards {
		t.shards[i] = &shard{seen: map[int64][]time.Time{}}
	}
	return t
}

func (t *Tracker) shardFor(userID int64) *shard {
	return t.shards[uint64(userID)%shardCount]
}

// Observe appends now to the user's window, prunes entries older than the
// window, and reports whether the pruned window exceeds the limit. On
// over-limit the window is cleared, so the same burst cannot re-trigger on
// the very next message; a persistent flooder has to cross the threshold
// again. The append-prune-check-clear sequence runs under the shard lock,
// so observations for one user are serialized.
func (t *Tracker) Observe(userID int64, now time.Time) Decision {
	s := t.shardFor(userID)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	window := append(s.seen[userID], now)
	cutoff := now.Add(-t.window)
	kept := window[:0]
	for _, at := range window {
		if at.After(cutoff) || at.Equal(cutoff) {
			kept = append(kept, at)
		}
	}

	if len(kept) > t.limit {
		delete(s.seen, userID)
		return Decision{OverLimit: true, Count: len(kept)}
	}

	s.seen[userID] = kept
	return Decision{OverLimit: false, Count: len(kept)}
}

// Forget drops the user's window entirely.
func (t *Tracker) Forget(userID int64) {
	s := t.shardFor(userID)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.seen, userID)
}

// Pending returns the number of timestamps currently held for the user,
// without pruning.
func (t *Tracker) Pending(userID int64) int {
	s := t.shardFor(userID)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.seen[userID])
}

// Sweep prunes every tracked user against now and drops empty windows,
// bounding memory for users that went quiet.
func (t *Tracker) Sweep(now time.Time) {
	cutoff := now.Add(-t.window)
	for _, s := range t.shards {
		s.mutex.Lock()
		for userID, window := range s.seen {
			kept := window[:0]
			for _, at := range window {
				if at.After(cutoff) || at.Equal(cutoff) {
					kept = append(kept, at)
				}
			}
			if len(kept) == 0 {
				delete(s.seen, userID)
				continue
			}
			s.seen[userID] = kept
		}
		s.mutex.Unlock()
	}
}
