package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/tick"
	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/engine"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
	"github.com/xraph/tick/schedule"
	"github.com/xraph/tick/scope"
	"github.com/xraph/tick/store/memory"
)

var baseNow = time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC)

// fakeClock is a mutable clock shared by the engine and the scheduler
// so tests control when jobs come due.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, opts ...engine.Option) (*engine.Engine, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: baseNow}
	base := []engine.Option{
		engine.WithLogger(discardLogger()),
		engine.WithClock(clk.Now),
	}
	eng, err := engine.New(memory.New(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng, clk
}

func ptr[T any](v T) *T { return &v }

// recorderExt captures lifecycle notifications in arrival order.
type recorderExt struct {
	mu     sync.Mutex
	events []string
}

func (r *recorderExt) Name() string { return "recorder" }

func (r *recorderExt) record(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorderExt) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorderExt) OnJobStarted(_ context.Context, j *job.Job) error {
	r.record("started:" + j.Name)
	return nil
}

func (r *recorderExt) OnJobCompleted(_ context.Context, j *job.Job, _ time.Duration) error {
	r.record("completed:" + j.Name)
	return nil
}

func (r *recorderExt) OnJobFailed(_ context.Context, j *job.Job, _ error) error {
	r.record("failed:" + j.Name)
	return nil
}

func (r *recorderExt) OnPassCompleted(_ context.Context, candidates, executed, failed int, _ time.Duration) error {
	r.record(fmt.Sprintf("pass:%d/%d/%d", candidates, executed, failed))
	return nil
}

func (r *recorderExt) OnAlertDispatched(_ context.Context, a alert.Alert, _ *alert.Result) error {
	r.record("alert_dispatched:" + a.Type)
	return nil
}

func (r *recorderExt) OnAlertSuppressed(_ context.Context, a alert.Alert, _ *alert.Result) error {
	r.record("alert_suppressed:" + a.Type)
	return nil
}

func (r *recorderExt) OnShutdown(context.Context) error {
	r.record("shutdown")
	return nil
}

// ──────────────────────────────────────────────────
// Construction
// ──────────────────────────────────────────────────

func TestNew_RequiresStore(t *testing.T) {
	if _, err := engine.New(nil); !errors.Is(err, tick.ErrNoStore) {
		t.Fatalf("New(nil) error = %v, want %v", err, tick.ErrNoStore)
	}
}

func TestNew_Defaults(t *testing.T) {
	eng, _ := newEngine(t)

	cfg := eng.Config()
	want := tick.DefaultConfig()
	if cfg.Environment != want.Environment || cfg.PollInterval != want.PollInterval {
		t.Errorf("Config() = %+v, want defaults %+v", cfg, want)
	}
	if eng.Store() == nil || eng.Registry() == nil || eng.Extensions() == nil || eng.Scheduler() == nil {
		t.Error("expected every subsystem wired")
	}
}

func TestNew_WithConfig(t *testing.T) {
	cfg := tick.Config{
		Environment:     "staging",
		Concurrency:     4,
		PollInterval:    time.Second,
		AlertRetention:  time.Hour,
		ShutdownTimeout: 5 * time.Second,
	}
	eng, err := engine.New(memory.New(), engine.WithConfig(cfg), engine.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := eng.Config().Environment; got != "staging" {
		t.Errorf("Environment = %q, want %q", got, "staging")
	}
}

// ──────────────────────────────────────────────────
// Job administration
// ──────────────────────────────────────────────────

func TestCreateJob_Validation(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		jobName  string
		expr     string
		function string
		wantErr  error
	}{
		{"empty name", "", "hourly", "sync_accounts", tick.ErrNameRequired},
		{"blank name", "   ", "hourly", "sync_accounts", tick.ErrNameRequired},
		{"empty schedule", "sync", "", "sync_accounts", tick.ErrScheduleRequired},
		{"empty function", "sync", "hourly", "", tick.ErrFunctionRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := eng.CreateJob(ctx, tc.jobName, tc.expr, tc.function); !errors.Is(err, tc.wantErr) {
				t.Fatalf("CreateJob error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateJob_SeedsNextRun(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	j, err := eng.CreateJob(ctx, "sync accounts", "every-5-minutes", "sync_accounts")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if !j.Active {
		t.Error("new job should be active")
	}
	wantNext := baseNow.Add(5 * time.Minute)
	if j.NextRunAt == nil || !j.NextRunAt.Equal(wantNext) {
		t.Errorf("NextRunAt = %v, want %v", j.NextRunAt, wantNext)
	}
	if j.CreatedAt.IsZero() || j.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}

	stored, err := eng.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.Name != "sync accounts" || stored.Schedule != "every-5-minutes" || stored.FunctionName != "sync_accounts" {
		t.Errorf("stored job = %+v", stored)
	}
}

func TestCreateJob_UnknownScheduleFallsBack(t *testing.T) {
	eng, _ := newEngine(t)

	j, err := eng.CreateJob(context.Background(), "report", "every tuesday", "weekly_report")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	want := baseNow.Add(schedule.FallbackInterval)
	if j.NextRunAt == nil || !j.NextRunAt.Equal(want) {
		t.Errorf("NextRunAt = %v, want fallback %v", j.NextRunAt, want)
	}
}

func TestCreateJob_Options(t *testing.T) {
	eng, _ := newEngine(t)

	j, err := eng.CreateJob(context.Background(), "tenant sync", "hourly", "sync_accounts",
		job.WithTenant("acme"),
		job.WithInactive(),
		job.WithExtra(map[string]any{"region": "eu-1"}),
	)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if j.TenantID != "acme" {
		t.Errorf("TenantID = %q, want %q", j.TenantID, "acme")
	}
	if j.Active {
		t.Error("WithInactive should create a paused job")
	}
	if v, ok := j.Metadata.Get("region"); !ok || v != "eu-1" {
		t.Errorf("Metadata region = %v (%t), want eu-1", v, ok)
	}
}

func TestUpdateJob_PatchesFields(t *testing.T) {
	eng, clk := newEngine(t)
	ctx := context.Background()

	j, err := eng.CreateJob(ctx, "sync", "hourly", "sync_accounts",
		job.WithExtra(map[string]any{"region": "eu-1"}))
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	origNext := *j.NextRunAt

	// Patching name and metadata leaves the schedule seed alone.
	updated, err := eng.UpdateJob(ctx, j.ID, engine.Patch{
		Name:  ptr("sync v2"),
		Extra: map[string]any{"batch": 50},
	})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if updated.Name != "sync v2" || updated.Schedule != "hourly" {
		t.Errorf("job after patch = %+v", updated)
	}
	if updated.NextRunAt == nil || !updated.NextRunAt.Equal(origNext) {
		t.Errorf("NextRunAt = %v, want untouched %v", updated.NextRunAt, origNext)
	}
	if v, ok := updated.Metadata.Get("region"); !ok || v != "eu-1" {
		t.Errorf("Metadata region = %v (%t), want preserved", v, ok)
	}
	if v, ok := updated.Metadata.Get("batch"); !ok || v != 50 {
		t.Errorf("Metadata batch = %v (%t), want 50", v, ok)
	}

	// Changing the schedule reseeds from the current clock.
	clk.Advance(10 * time.Minute)
	resched, err := eng.UpdateJob(ctx, j.ID, engine.Patch{Schedule: ptr("every-5-minutes")})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	wantNext := clk.Now().Add(5 * time.Minute)
	if resched.NextRunAt == nil || !resched.NextRunAt.Equal(wantNext) {
		t.Errorf("NextRunAt = %v, want reseeded %v", resched.NextRunAt, wantNext)
	}

	// Re-submitting the same schedule does not reseed.
	clk.Advance(time.Minute)
	same, err := eng.UpdateJob(ctx, j.ID, engine.Patch{Schedule: ptr("every-5-minutes")})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if same.NextRunAt == nil || !same.NextRunAt.Equal(wantNext) {
		t.Errorf("NextRunAt = %v, want unchanged %v", same.NextRunAt, wantNext)
	}

	// Deactivation flips the flag without touching anything else.
	off, err := eng.UpdateJob(ctx, j.ID, engine.Patch{Active: ptr(false)})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if off.Active {
		t.Error("job should be inactive after patch")
	}
}

func TestUpdateJob_Validation(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	j, err := eng.CreateJob(ctx, "sync", "hourly", "sync_accounts")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if _, err := eng.UpdateJob(ctx, j.ID, engine.Patch{Name: ptr("  ")}); !errors.Is(err, tick.ErrNameRequired) {
		t.Errorf("blank name error = %v, want %v", err, tick.ErrNameRequired)
	}
	if _, err := eng.UpdateJob(ctx, j.ID, engine.Patch{Schedule: ptr("")}); !errors.Is(err, tick.ErrScheduleRequired) {
		t.Errorf("empty schedule error = %v, want %v", err, tick.ErrScheduleRequired)
	}
	if _, err := eng.UpdateJob(ctx, j.ID, engine.Patch{FunctionName: ptr("")}); !errors.Is(err, tick.ErrFunctionRequired) {
		t.Errorf("empty function error = %v, want %v", err, tick.ErrFunctionRequired)
	}
	if _, err := eng.UpdateJob(ctx, id.NewJobID(), engine.Patch{}); !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("missing job error = %v, want %v", err, tick.ErrJobNotFound)
	}
}

func TestDeleteJob(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	j, err := eng.CreateJob(ctx, "sync", "hourly", "sync_accounts")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := eng.DeleteJob(ctx, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := eng.GetJob(ctx, j.ID); !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("GetJob after delete error = %v, want %v", err, tick.ErrJobNotFound)
	}
	if err := eng.DeleteJob(ctx, j.ID); !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("second DeleteJob error = %v, want %v", err, tick.ErrJobNotFound)
	}
}

func TestListJobs_Filters(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	mustCreate := func(name string, opts ...job.Option) {
		t.Helper()
		if _, err := eng.CreateJob(ctx, name, "hourly", "fn_"+name, opts...); err != nil {
			t.Fatalf("CreateJob(%s): %v", name, err)
		}
	}
	mustCreate("first")
	mustCreate("second", job.WithTenant("acme"))
	mustCreate("third", job.WithInactive())

	all, err := eng.ListJobs(ctx, job.Filter{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListJobs() returned %d jobs, want 3", len(all))
	}

	active, err := eng.ListJobs(ctx, job.Filter{Active: ptr(true)})
	if err != nil {
		t.Fatalf("ListJobs(active): %v", err)
	}
	if len(active) != 2 {
		t.Errorf("active filter returned %d jobs, want 2", len(active))
	}

	tenant, err := eng.ListJobs(ctx, job.Filter{TenantID: "acme"})
	if err != nil {
		t.Fatalf("ListJobs(tenant): %v", err)
	}
	if len(tenant) != 1 || tenant[0].Name != "second" {
		t.Errorf("tenant filter = %v, want [second]", jobNames(tenant))
	}
}

func jobNames(jobs []*job.Job) []string {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	return names
}

// ──────────────────────────────────────────────────
// Execution
// ──────────────────────────────────────────────────

func TestRunDueJobs_ExecutesRegisteredFunction(t *testing.T) {
	eng, clk := newEngine(t)
	ctx := context.Background()

	type syncConfig struct {
		Region string `json:"region"`
		Batch  int    `json:"batch"`
	}
	var (
		mu  sync.Mutex
		got []syncConfig
	)
	engine.Register(eng, job.NewDefinition("sync_accounts",
		func(_ context.Context, _ *job.Invocation, cfg syncConfig) error {
			mu.Lock()
			got = append(got, cfg)
			mu.Unlock()
			return nil
		}))

	j, err := eng.CreateJob(ctx, "sync", "every-5-minutes", "sync_accounts",
		job.WithExtra(map[string]any{"region": "eu-1", "batch": 50}))
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	// The first occurrence is five minutes out, so nothing is due yet.
	sum, err := eng.RunDueJobs(ctx)
	if err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}
	if sum.Candidates != 0 {
		t.Fatalf("Candidates = %d before the first occurrence, want 0", sum.Candidates)
	}

	clk.Advance(5 * time.Minute)
	sum, err = eng.RunDueJobs(ctx)
	if err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}
	if sum.Candidates != 1 || len(sum.Executed) != 1 || len(sum.Failed) != 0 {
		t.Fatalf("summary = %d candidates, %d executed, %d failed; want 1/1/0",
			sum.Candidates, len(sum.Executed), len(sum.Failed))
	}
	if exec := sum.Executed[0]; exec.JobID != j.ID || exec.Function != "sync_accounts" {
		t.Errorf("execution = %+v", exec)
	}

	mu.Lock()
	if len(got) != 1 || got[0].Region != "eu-1" || got[0].Batch != 50 {
		t.Errorf("handler configs = %+v, want one decoded {eu-1 50}", got)
	}
	mu.Unlock()

	stored, err := eng.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.LastRunAt == nil || !stored.LastRunAt.Equal(clk.Now()) {
		t.Errorf("LastRunAt = %v, want %v", stored.LastRunAt, clk.Now())
	}
	wantNext := clk.Now().Add(5 * time.Minute)
	if stored.NextRunAt == nil || !stored.NextRunAt.Equal(wantNext) {
		t.Errorf("NextRunAt = %v, want advanced to %v", stored.NextRunAt, wantNext)
	}
	if stored.Metadata.ExecutionCount != 1 {
		t.Errorf("ExecutionCount = %d, want 1", stored.Metadata.ExecutionCount)
	}
}

func TestRunDueJobs_InjectsTenantScope(t *testing.T) {
	eng, clk := newEngine(t)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		tenants []string
	)
	eng.RegisterFunc("report", func(ctx context.Context, _ *job.Invocation) error {
		tenant, _ := scope.TenantID(ctx)
		mu.Lock()
		tenants = append(tenants, tenant)
		mu.Unlock()
		return nil
	})

	if _, err := eng.CreateJob(ctx, "acme report", "every-5-minutes", "report",
		job.WithTenant("acme")); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	clk.Advance(5 * time.Minute)
	if _, err := eng.RunDueJobs(ctx); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(tenants) != 1 || tenants[0] != "acme" {
		t.Fatalf("handler saw tenants %v, want [acme]", tenants)
	}
}

func TestRunDueJobs_RecordsFailure(t *testing.T) {
	eng, clk := newEngine(t)
	ctx := context.Background()

	eng.RegisterFunc("always_fails", func(context.Context, *job.Invocation) error {
		return errors.New("boom")
	})

	j, err := eng.CreateJob(ctx, "doomed", "every-5-minutes", "always_fails")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	clk.Advance(5 * time.Minute)
	sum, err := eng.RunDueJobs(ctx)
	if err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}
	if len(sum.Failed) != 1 || len(sum.Executed) != 0 {
		t.Fatalf("summary = %d executed, %d failed; want 0/1", len(sum.Executed), len(sum.Failed))
	}
	if !strings.Contains(sum.Failed[0].Error, "boom") {
		t.Errorf("failure message = %q, want the handler error", sum.Failed[0].Error)
	}

	stored, err := eng.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.Metadata.LastError != "boom" || stored.Metadata.ErrorCount != 1 {
		t.Errorf("metadata = %+v, want last_error boom and error_count 1", stored.Metadata)
	}
	// The schedule still advances: one bad run must not stall the job.
	if stored.NextRunAt == nil || !stored.NextRunAt.Equal(clk.Now().Add(5*time.Minute)) {
		t.Errorf("NextRunAt = %v, want advanced past the failure", stored.NextRunAt)
	}
}

func TestRunJob_BypassesScheduleAndActiveFlag(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	var runs atomic.Int64
	eng.RegisterFunc("sync_accounts", func(context.Context, *job.Invocation) error {
		runs.Add(1)
		return nil
	})

	j, err := eng.CreateJob(ctx, "paused", "hourly", "sync_accounts", job.WithInactive())
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	exec, err := eng.RunJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if exec.Failed() {
		t.Fatalf("execution failed: %s", exec.Error)
	}
	if runs.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", runs.Load())
	}
}

func TestRunJob_MissingJob(t *testing.T) {
	eng, _ := newEngine(t)

	if _, err := eng.RunJob(context.Background(), id.NewJobID()); !errors.Is(err, tick.ErrJobNotFound) {
		t.Fatalf("RunJob error = %v, want %v", err, tick.ErrJobNotFound)
	}
}

func TestRunJob_UnregisteredFunction(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	j, err := eng.CreateJob(ctx, "orphan", "hourly", "missing_fn")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	exec, err := eng.RunJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if !exec.Failed() || !strings.Contains(exec.Error, "no function registered") {
		t.Errorf("execution = %+v, want a function-not-found failure", exec)
	}
}

func TestRunDueJobs_NotifiesExtensions(t *testing.T) {
	rec := &recorderExt{}
	eng, clk := newEngine(t, engine.WithExtension(rec))
	ctx := context.Background()

	eng.RegisterFunc("sync_accounts", func(context.Context, *job.Invocation) error { return nil })
	if _, err := eng.CreateJob(ctx, "sync", "every-5-minutes", "sync_accounts"); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	clk.Advance(5 * time.Minute)
	if _, err := eng.RunDueJobs(ctx); err != nil {
		t.Fatalf("RunDueJobs: %v", err)
	}

	want := []string{"started:sync", "completed:sync", "pass:1/1/0"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

// ──────────────────────────────────────────────────
// Alerts
// ──────────────────────────────────────────────────

func TestDispatch_RequiresSink(t *testing.T) {
	eng, _ := newEngine(t)

	_, err := eng.Dispatch(context.Background(), alert.Alert{Type: "job_failure", Component: "cron"})
	if !errors.Is(err, tick.ErrSinkRequired) {
		t.Fatalf("Dispatch error = %v, want %v", err, tick.ErrSinkRequired)
	}
}

func TestDispatch_CreatesThenSuppresses(t *testing.T) {
	var (
		mu        sync.Mutex
		delivered []alert.Alert
	)
	sink := alert.SinkFunc(func(_ context.Context, a alert.Alert) (string, error) {
		mu.Lock()
		delivered = append(delivered, a)
		mu.Unlock()
		return "INC-1", nil
	})
	rec := &recorderExt{}
	eng, _ := newEngine(t, engine.WithSink(sink), engine.WithExtension(rec))
	ctx := context.Background()

	a := alert.Alert{
		Type:        "job_failure",
		Component:   "cron",
		Severity:    "critical",
		Description: "sync_accounts failed",
	}

	first, err := eng.Dispatch(ctx, a)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if first.Status != alert.StatusCreated || first.Reference != "INC-1" {
		t.Fatalf("first result = %+v, want created with INC-1", first)
	}

	second, err := eng.Dispatch(ctx, a)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if second.Status != alert.StatusSuppressed {
		t.Fatalf("second result = %+v, want suppressed", second)
	}
	if second.Reference != "INC-1" {
		t.Errorf("suppressed Reference = %q, want the original INC-1", second.Reference)
	}

	mu.Lock()
	if len(delivered) != 1 {
		t.Errorf("sink called %d times, want 1", len(delivered))
	} else if delivered[0].Environment != "production" {
		t.Errorf("Environment = %q, want the engine default", delivered[0].Environment)
	}
	mu.Unlock()

	got := rec.snapshot()
	want := []string{"alert_dispatched:job_failure", "alert_suppressed:job_failure"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

func TestClose_FiresShutdownHooks(t *testing.T) {
	rec := &recorderExt{}
	eng, _ := newEngine(t, engine.WithExtension(rec))
	ctx := context.Background()

	if err := eng.StartPoller(ctx); err != nil {
		t.Fatalf("StartPoller: %v", err)
	}
	if err := eng.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events := rec.snapshot()
	if len(events) == 0 || events[len(events)-1] != "shutdown" {
		t.Errorf("events = %v, want shutdown last", events)
	}
}

func TestClose_WithoutPoller(t *testing.T) {
	rec := &recorderExt{}
	eng, _ := newEngine(t, engine.WithExtension(rec))

	if err := eng.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	events := rec.snapshot()
	if len(events) != 1 || events[0] != "shutdown" {
		t.Errorf("events = %v, want [shutdown]", events)
	}
}
