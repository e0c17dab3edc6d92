package ext_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/ext"
	"github.com/xraph/tick/job"
)

// witness records every hook it receives, optionally failing some.
// The embedded name keeps multi-extension tests readable.
type witness struct {
	name   string
	got    []string
	failOn string
}

func (w *witness) Name() string { return w.name }

func (w *witness) saw(hook string) error {
	w.got = append(w.got, hook)
	if hook == w.failOn {
		return errors.New(hook + " refused")
	}
	return nil
}

func (w *witness) OnJobStarted(context.Context, *job.Job) error {
	return w.saw("job started")
}

func (w *witness) OnJobCompleted(context.Context, *job.Job, time.Duration) error {
	return w.saw("job completed")
}

// fullWitness adds the remaining hooks on top of witness.
type fullWitness struct {
	witness
}

func (w *fullWitness) OnJobFailed(context.Context, *job.Job, error) error {
	return w.saw("job failed")
}

func (w *fullWitness) OnJobRescheduled(context.Context, *job.Job, time.Time) error {
	return w.saw("job rescheduled")
}

func (w *fullWitness) OnPassCompleted(_ context.Context, _, _, _ int, _ time.Duration) error {
	return w.saw("pass completed")
}

func (w *fullWitness) OnAlertDispatched(context.Context, alert.Alert, *alert.Result) error {
	return w.saw("alert dispatched")
}

func (w *fullWitness) OnAlertSuppressed(context.Context, alert.Alert, *alert.Result) error {
	return w.saw("alert suppressed")
}

func (w *fullWitness) OnShutdown(context.Context) error {
	return w.saw("shutdown")
}

func quietRegistry() *ext.Registry {
	return ext.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_TracksRegistrations(t *testing.T) {
	r := quietRegistry()
	r.Register(&witness{name: "a"})
	r.Register(&witness{name: "b"})

	exts := r.Extensions()
	if len(exts) != 2 {
		t.Fatalf("Extensions() has %d entries, want 2", len(exts))
	}
	if exts[0].Name() != "a" || exts[1].Name() != "b" {
		t.Errorf("Extensions() order = %q, %q", exts[0].Name(), exts[1].Name())
	}
}

func TestRegistry_DeliversEveryEvent(t *testing.T) {
	r := quietRegistry()
	w := &fullWitness{witness{name: "full"}}
	r.Register(w)

	ctx := context.Background()
	j := &job.Job{Name: "nightly-report"}
	a := alert.Alert{Component: "scheduler"}
	res := &alert.Result{Status: alert.StatusCreated}

	r.EmitJobStarted(ctx, j)
	r.EmitJobCompleted(ctx, j, time.Second)
	r.EmitJobFailed(ctx, j, errors.New("x"))
	r.EmitJobRescheduled(ctx, j, time.Now())
	r.EmitPassCompleted(ctx, 3, 2, 1, time.Second)
	r.EmitAlertDispatched(ctx, a, res)
	r.EmitAlertSuppressed(ctx, a, res)
	r.EmitShutdown(ctx)

	want := []string{
		"job started", "job completed", "job failed", "job rescheduled",
		"pass completed", "alert dispatched", "alert suppressed", "shutdown",
	}
	if len(w.got) != len(want) {
		t.Fatalf("received %v, want %v", w.got, want)
	}
	for i := range want {
		if w.got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, w.got[i], want[i])
		}
	}
}

func TestRegistry_SkipsNonImplementors(t *testing.T) {
	r := quietRegistry()
	partial := &witness{name: "partial"}
	full := &fullWitness{witness{name: "full"}}
	r.Register(partial)
	r.Register(full)

	ctx := context.Background()
	r.EmitJobStarted(ctx, &job.Job{})
	r.EmitShutdown(ctx)

	if len(partial.got) != 1 || partial.got[0] != "job started" {
		t.Errorf("partial extension received %v, want only the job start", partial.got)
	}
	if len(full.got) != 2 {
		t.Errorf("full extension received %v, want both events", full.got)
	}
}

func TestRegistry_HookErrorDoesNotStopFanout(t *testing.T) {
	r := quietRegistry()
	angry := &witness{name: "angry", failOn: "job started"}
	calm := &witness{name: "calm"}
	r.Register(angry)
	r.Register(calm)

	r.EmitJobStarted(context.Background(), &job.Job{})

	if len(calm.got) != 1 {
		t.Fatalf("extension after a failing hook received %v, want the event", calm.got)
	}
}

func TestRegistry_NotifiesInRegistrationOrder(t *testing.T) {
	r := quietRegistry()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		n := name
		r.Register(hookFunc(func() { order = append(order, n) }))
	}

	r.EmitJobStarted(context.Background(), &job.Job{})

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Fatalf("notification order = %v", order)
	}
}

// hookFunc adapts a closure into a job-started extension.
type hookFunc func()

func (hookFunc) Name() string { return "hook-func" }

func (f hookFunc) OnJobStarted(context.Context, *job.Job) error {
	f()
	return nil
}
