package lifecycle

import (
	"context"
	"errors"
	"testing"
)

type recordingComponent struct {
	name     string
	journal  *[]string
	startErr error
	stopErr  error
}

func (c *recordingComponent) Start(context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}
	*c.journal = append(*c.journal, "start "+c.name)
	return nil
}

func (c *recordingComponent) Stop(context.Context) error {
	if c.stopErr != nil {
		return c.stopErr
	}
	*c.journal = append(*c.journal, "stop "+c.name)
	return nil
}

func TestRuntimeStartStopOrder(t *testing.T) {
	t.Parallel()

	var journal []string
	r := NewRuntime()
	r.Register("a", &recordingComponent{name: "a", journal: &journal})
	r.Register("b", &recordingComponent{name: "b", journal: &journal})
	r.Register("c", &recordingComponent{name: "c", journal: &journal})

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	want := []string{"start a", "start b", "start c", "stop c", "stop b", "stop a"}
	if len(journal) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), journal)
	}
	for i := range want {
		if journal[i] != want[i] {
			t.Fatalf("step %d: expected %q, got %q (full: %v)", i, want[i], journal[i], journal)
		}
	}
}

func TestRuntimeStartFailureRollsBack(t *testing.T) {
	t.Parallel()

	var journal []string
	boom := errors.New("boom")
	r := NewRuntime()
	r.Register("a", &recordingComponent{name: "a", journal: &journal})
	r.Register("b", &recordingComponent{name: "b", journal: &journal, startErr: boom})
	r.Register("c", &recordingComponent{name: "c", journal: &journal})

	err := r.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}

	want := []string{"start a", "stop a"}
	if len(journal) != len(want) || journal[0] != want[0] || journal[1] != want[1] {
		t.Fatalf("expected rollback %v, got %v", want, journal)
	}
}

func TestRuntimeStopCollectsErrors(t *testing.T) {
	t.Parallel()

	var journal []string
	failB := errors.New("b wont stop")
	r := NewRuntime()
	r.Register("a", &recordingComponent{name: "a", journal: &journal})
	r.Register("b", &recordingComponent{name: "b", journal: &journal, stopErr: failB})

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := r.Stop(ctx)
	if !errors.Is(err, failB) {
		t.Fatalf("expected stop error to surface, got %v", err)
	}
	// the failing component must not block the rest
	if journal[len(journal)-1] != "stop a" {
		t.Fatalf("expected a to stop despite b failing, got %v", journal)
	}
}

func TestRuntimeIgnoresNilComponent(t *testing.T) {
	t.Parallel()

	r := NewRuntime()
	r.Register("nothing", nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
