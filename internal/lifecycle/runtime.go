package lifecycle

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Component is anything with a managed lifetime: background sweepers,
// listeners, pollers.
type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type entry struct {
	name      string
	component Component
}

// Runtime starts components in registration order and stops them in
// reverse. A failed start stops whatever already started.
type Runtime struct {
	entries []entry
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

func (r *Runtime) Register(name string, component Component) {
	if component == nil {
		return
	}
	r.entries = append(r.entries, entry{name: name, component: component})
}

func (r *Runtime) Start(ctx context.Context) error {
	started := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		if err := e.component.Start(ctx); err != nil {
			_ = stopEntries(ctx, started)
			return fmt.Errorf("start %s: %w", e.name, err)
		}
		log.WithField("component", e.name).Debug("started")
		started = append(started, e)
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	return stopEntries(ctx, r.entries)
}

func stopEntries(ctx context.Context, entries []entry) error {
	var stopErr error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := e.component.Stop(ctx); err != nil {
			stopErr = errors.Join(stopErr, fmt.Errorf("stop %s: %w", e.name, err))
			continue
		}
		log.WithField("component", e.name).Debug("stopped")
	}
	return stopErr
}
