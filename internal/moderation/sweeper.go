package moderation

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/modwarden/modwarden/internal/flood"
)

// SweeperStore is the slice of the durable client the sweeper needs.
type SweeperStore interface {
	RemoveExpiredBans(ctx context.Context) (int64, error)
}

// Sweeper periodically drops expired ban rows and prunes quiet users from
// the flood tracker, so neither grows without bound.
type Sweeper struct {
	store    SweeperStore
	tracker  *flood.Tracker
	interval time.Duration

	runMutex  sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
}

func NewSweeper(store SweeperStore, tracker *flood.Tracker, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		tracker:  tracker,
		interval: interval,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel

	s.workersWg.Add(1)
	go func() {
		defer s.workersWg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.sweep(runCtx)
			}
		}
	}()

	s.started = true
	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	s.runMutex.Lock()
	if !s.started {
		s.runMutex.Unlock()
		return nil
	}
	s.started = false
	cancel := s.runCancel
	s.runMutex.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.workersWg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.store.RemoveExpiredBans(ctx)
	if err != nil {
		log.WithError(err).Error("cant remove expired bans")
	} else if removed > 0 {
		log.WithField("removed", removed).Debug("swept expired bans")
	}

	if s.tracker != nil {
		s.tracker.Sweep(time.Now())
	}
}
