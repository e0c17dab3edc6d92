// Package storetest holds the conformance suite every store.Store
// backend must pass. Backend test files call Run with a factory; the
// suite exercises the job store contract (not-found sentinels, due
// selection and ordering, lease semantics) and the alert suppression
// store (TTL expiry at read time).
//
// Seeded timestamps are truncated to milliseconds so backends with
// millisecond precision compare equal to the originals.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/tick"
	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
	"github.com/xraph/tick/store"
)

// Factory returns a fresh, migrated, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against the backend.
func Run(t *testing.T, factory Factory) {
	t.Run("CreateAndGetJob", func(t *testing.T) { testCreateAndGetJob(t, factory(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, factory(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory(t)) })
	t.Run("UpdateJob", func(t *testing.T) { testUpdateJob(t, factory(t)) })
	t.Run("DeleteJob", func(t *testing.T) { testDeleteJob(t, factory(t)) })
	t.Run("ListJobsFilters", func(t *testing.T) { testListJobsFilters(t, factory(t)) })
	t.Run("ListJobsPagination", func(t *testing.T) { testListJobsPagination(t, factory(t)) })
	t.Run("ListDueJobs", func(t *testing.T) { testListDueJobs(t, factory(t)) })
	t.Run("ClaimAndRelease", func(t *testing.T) { testClaimAndRelease(t, factory(t)) })
	t.Run("ClaimExpiredLease", func(t *testing.T) { testClaimExpiredLease(t, factory(t)) })
	t.Run("LeaseSurvivesUpdate", func(t *testing.T) { testLeaseSurvivesUpdate(t, factory(t)) })
	t.Run("ClaimMissing", func(t *testing.T) { testClaimMissing(t, factory(t)) })
	t.Run("AlertEntryRoundTrip", func(t *testing.T) { testAlertEntryRoundTrip(t, factory(t)) })
	t.Run("AlertEntryExpires", func(t *testing.T) { testAlertEntryExpires(t, factory(t)) })
	t.Run("Ping", func(t *testing.T) { testPing(t, factory(t)) })
}

// now returns the current UTC time at millisecond precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newJob(name string) *job.Job {
	j := &job.Job{
		ID:           id.NewJobID(),
		Name:         name,
		Schedule:     "hourly",
		FunctionName: "sync",
		Active:       true,
	}
	j.Touch(now())
	return j
}

func mustCreate(t *testing.T, s store.Store, j *job.Job) {
	t.Helper()
	if err := s.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("CreateJob(%s): %v", j.Name, err)
	}
}

func testCreateAndGetJob(t *testing.T, s store.Store) {
	ctx := context.Background()

	next := now().Add(30 * time.Minute)
	last := now().Add(-30 * time.Minute)
	j := newJob("billing-sync")
	j.TenantID = "tn_42"
	j.NextRunAt = &next
	j.LastRunAt = &last
	j.Metadata.ExecutionCount = 3
	j.Metadata.LastError = "previous failure"
	j.Metadata.ErrorCount = 1
	j.Metadata.Merge(map[string]any{"region": "eu-west-1"})

	mustCreate(t, s, j)

	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Name != "billing-sync" || got.TenantID != "tn_42" || got.FunctionName != "sync" {
		t.Errorf("job = %+v, want seeded fields", got)
	}
	if !got.Active {
		t.Error("Active not persisted")
	}
	if got.NextRunAt == nil || !got.NextRunAt.Equal(next) {
		t.Errorf("NextRunAt = %v, want %v", got.NextRunAt, next)
	}
	if got.LastRunAt == nil || !got.LastRunAt.Equal(last) {
		t.Errorf("LastRunAt = %v, want %v", got.LastRunAt, last)
	}
	if got.Metadata.ExecutionCount != 3 || got.Metadata.ErrorCount != 1 {
		t.Errorf("metadata counters = %d/%d, want 3/1",
			got.Metadata.ExecutionCount, got.Metadata.ErrorCount)
	}
	if got.Metadata.LastError != "previous failure" {
		t.Errorf("LastError = %q", got.Metadata.LastError)
	}
	if v, ok := got.Metadata.Get("region"); !ok || v != "eu-west-1" {
		t.Errorf("metadata extra region = %v (ok=%v), want eu-west-1", v, ok)
	}

	// Mutating the returned copy must not leak into the store.
	got.Name = "mutated"
	got.Metadata.RecordError("local only")
	again, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob again: %v", err)
	}
	if again.Name != "billing-sync" || again.Metadata.ErrorCount != 1 {
		t.Error("store state leaked through a returned copy")
	}
}

func testCreateDuplicate(t *testing.T, s store.Store) {
	j := newJob("dup")
	mustCreate(t, s, j)

	if err := s.CreateJob(context.Background(), j); !errors.Is(err, tick.ErrJobExists) {
		t.Errorf("duplicate create err = %v, want ErrJobExists", err)
	}
}

func testGetMissing(t *testing.T, s store.Store) {
	_, err := s.GetJob(context.Background(), id.NewJobID())
	if !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("missing get err = %v, want ErrJobNotFound", err)
	}
}

func testUpdateJob(t *testing.T, s store.Store) {
	ctx := context.Background()

	j := newJob("updatable")
	mustCreate(t, s, j)

	j.Schedule = "daily"
	j.Active = false
	j.Metadata.RecordExecution(now())
	if err := s.UpdateJob(ctx, j); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Schedule != "daily" || got.Active {
		t.Errorf("update not persisted: schedule=%q active=%v", got.Schedule, got.Active)
	}
	if got.Metadata.ExecutionCount != 1 {
		t.Errorf("ExecutionCount = %d, want 1", got.Metadata.ExecutionCount)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}

	missing := newJob("ghost")
	if err := s.UpdateJob(ctx, missing); !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("update missing err = %v, want ErrJobNotFound", err)
	}
}

func testDeleteJob(t *testing.T, s store.Store) {
	ctx := context.Background()

	j := newJob("doomed")
	mustCreate(t, s, j)

	if err := s.DeleteJob(ctx, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := s.GetJob(ctx, j.ID); !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("get after delete err = %v, want ErrJobNotFound", err)
	}
	if err := s.DeleteJob(ctx, j.ID); !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("double delete err = %v, want ErrJobNotFound", err)
	}
}

func testListJobsFilters(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := newJob("tenant-a-sync")
	a.TenantID = "tn_a"
	mustCreate(t, s, a)

	b := newJob("tenant-b-sync")
	b.TenantID = "tn_b"
	b.Active = false
	mustCreate(t, s, b)

	c := newJob("tenant-a-report")
	c.TenantID = "tn_a"
	c.FunctionName = "report"
	mustCreate(t, s, c)

	all, err := s.ListJobs(ctx, job.Filter{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	active := true
	onlyActive, err := s.ListJobs(ctx, job.Filter{Active: &active})
	if err != nil {
		t.Fatalf("ListJobs(active): %v", err)
	}
	if len(onlyActive) != 2 {
		t.Errorf("len(active) = %d, want 2", len(onlyActive))
	}

	tenantA, err := s.ListJobs(ctx, job.Filter{TenantID: "tn_a"})
	if err != nil {
		t.Fatalf("ListJobs(tenant): %v", err)
	}
	if len(tenantA) != 2 {
		t.Errorf("len(tn_a) = %d, want 2", len(tenantA))
	}

	reports, err := s.ListJobs(ctx, job.Filter{FunctionName: "report"})
	if err != nil {
		t.Fatalf("ListJobs(function): %v", err)
	}
	if len(reports) != 1 || reports[0].Name != "tenant-a-report" {
		t.Errorf("function filter = %v", jobNames(reports))
	}
}

func testListJobsPagination(t *testing.T, s store.Store) {
	ctx := context.Background()

	// Stagger CreatedAt so newest-first ordering is deterministic.
	base := now().Add(-time.Hour)
	names := []string{"first", "second", "third", "fourth"}
	for i, name := range names {
		j := newJob(name)
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		j.UpdatedAt = j.CreatedAt
		mustCreate(t, s, j)
	}

	page, err := s.ListJobs(ctx, job.Filter{Limit: 2})
	if err != nil {
		t.Fatalf("ListJobs(limit): %v", err)
	}
	if got := jobNames(page); len(got) != 2 || got[0] != "fourth" || got[1] != "third" {
		t.Errorf("first page = %v, want [fourth third]", got)
	}

	page, err = s.ListJobs(ctx, job.Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListJobs(offset): %v", err)
	}
	if got := jobNames(page); len(got) != 2 || got[0] != "second" || got[1] != "first" {
		t.Errorf("second page = %v, want [second first]", got)
	}

	page, err = s.ListJobs(ctx, job.Filter{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobs(offset beyond): %v", err)
	}
	if len(page) != 0 {
		t.Errorf("offset beyond end = %v, want empty", jobNames(page))
	}
}

func testListDueJobs(t *testing.T, s store.Store) {
	ctx := context.Background()
	at := now()

	unscheduled := newJob("unscheduled")
	mustCreate(t, s, unscheduled)

	oldest := newJob("oldest")
	oldestNext := at.Add(-time.Hour)
	oldest.NextRunAt = &oldestNext
	mustCreate(t, s, oldest)

	recent := newJob("recent")
	recentNext := at.Add(-time.Minute)
	recent.NextRunAt = &recentNext
	mustCreate(t, s, recent)

	future := newJob("future")
	futureNext := at.Add(time.Hour)
	future.NextRunAt = &futureNext
	mustCreate(t, s, future)

	inactive := newJob("inactive")
	inactiveNext := at.Add(-time.Hour)
	inactive.NextRunAt = &inactiveNext
	inactive.Active = false
	mustCreate(t, s, inactive)

	due, err := s.ListDueJobs(ctx, at)
	if err != nil {
		t.Fatalf("ListDueJobs: %v", err)
	}
	want := []string{"unscheduled", "oldest", "recent"}
	got := jobNames(due)
	if len(got) != len(want) {
		t.Fatalf("due = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("due[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// A job due exactly at the boundary is included.
	boundary := newJob("boundary")
	boundary.NextRunAt = &at
	mustCreate(t, s, boundary)

	due, err = s.ListDueJobs(ctx, at)
	if err != nil {
		t.Fatalf("ListDueJobs(boundary): %v", err)
	}
	if len(due) != 4 {
		t.Errorf("due with boundary = %v, want 4 jobs", jobNames(due))
	}
}

func testClaimAndRelease(t *testing.T, s store.Store) {
	ctx := context.Background()

	j := newJob("contested")
	mustCreate(t, s, j)

	alice := id.NewWorkerID()
	bob := id.NewWorkerID()

	ok, err := s.ClaimJob(ctx, j.ID, alice, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first claim = %v, %v; want true, nil", ok, err)
	}

	// Re-claim by the holder extends the lease.
	ok, err = s.ClaimJob(ctx, j.ID, alice, time.Minute)
	if err != nil || !ok {
		t.Fatalf("re-claim by holder = %v, %v; want true, nil", ok, err)
	}

	// A different owner is blocked while the lease is live.
	ok, err = s.ClaimJob(ctx, j.ID, bob, time.Minute)
	if err != nil {
		t.Fatalf("claim by other: %v", err)
	}
	if ok {
		t.Fatal("second owner claimed a held lease")
	}

	// Release by a non-holder is a no-op.
	if err := s.ReleaseJob(ctx, j.ID, bob); err != nil {
		t.Fatalf("release by non-holder: %v", err)
	}
	ok, err = s.ClaimJob(ctx, j.ID, bob, time.Minute)
	if err != nil {
		t.Fatalf("claim after foreign release: %v", err)
	}
	if ok {
		t.Fatal("foreign release dropped the lease")
	}

	// Release by the holder frees the job.
	if err := s.ReleaseJob(ctx, j.ID, alice); err != nil {
		t.Fatalf("release by holder: %v", err)
	}
	ok, err = s.ClaimJob(ctx, j.ID, bob, time.Minute)
	if err != nil || !ok {
		t.Fatalf("claim after release = %v, %v; want true, nil", ok, err)
	}
}

func testClaimExpiredLease(t *testing.T, s store.Store) {
	ctx := context.Background()

	j := newJob("stale-lease")
	mustCreate(t, s, j)

	ok, err := s.ClaimJob(ctx, j.ID, id.NewWorkerID(), 20*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("initial claim = %v, %v", ok, err)
	}

	time.Sleep(50 * time.Millisecond)

	ok, err = s.ClaimJob(ctx, j.ID, id.NewWorkerID(), time.Minute)
	if err != nil {
		t.Fatalf("claim after expiry: %v", err)
	}
	if !ok {
		t.Error("expired lease blocked a new claim")
	}
}

func testLeaseSurvivesUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()

	j := newJob("leased-and-updated")
	mustCreate(t, s, j)

	holder := id.NewWorkerID()
	ok, err := s.ClaimJob(ctx, j.ID, holder, time.Minute)
	if err != nil || !ok {
		t.Fatalf("claim = %v, %v", ok, err)
	}

	// The run loop persists bookkeeping while holding the lease; the
	// update must not drop it.
	j.Metadata.RecordExecution(now())
	if err := s.UpdateJob(ctx, j); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	ok, err = s.ClaimJob(ctx, j.ID, id.NewWorkerID(), time.Minute)
	if err != nil {
		t.Fatalf("claim by other: %v", err)
	}
	if ok {
		t.Error("update dropped the execution lease")
	}

	if err := s.ReleaseJob(ctx, j.ID, holder); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func testClaimMissing(t *testing.T, s store.Store) {
	_, err := s.ClaimJob(context.Background(), id.NewJobID(), id.NewWorkerID(), time.Minute)
	if !errors.Is(err, tick.ErrJobNotFound) {
		t.Errorf("claim missing err = %v, want ErrJobNotFound", err)
	}
}

func testAlertEntryRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()

	e := &alert.Entry{
		Key:       "alert:deadbeefdeadbeef",
		Reference: "https://github.com/acme/ops/issues/41",
		CreatedAt: now(),
	}
	if err := s.PutEntry(ctx, e, time.Hour); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}

	got, err := s.GetEntry(ctx, e.Key)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got == nil {
		t.Fatal("GetEntry returned nil for a live entry")
	}
	if got.Reference != e.Reference || !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("entry = %+v, want %+v", got, e)
	}

	miss, err := s.GetEntry(ctx, "alert:0000000000000000")
	if err != nil {
		t.Fatalf("GetEntry(miss): %v", err)
	}
	if miss != nil {
		t.Errorf("miss = %+v, want nil", miss)
	}
}

func testAlertEntryExpires(t *testing.T, s store.Store) {
	ctx := context.Background()

	e := &alert.Entry{
		Key:       "alert:feedfacefeedface",
		Reference: "https://github.com/acme/ops/issues/42",
		CreatedAt: now(),
	}
	if err := s.PutEntry(ctx, e, 30*time.Millisecond); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	got, err := s.GetEntry(ctx, e.Key)
	if err != nil {
		t.Fatalf("GetEntry after expiry: %v", err)
	}
	if got != nil {
		t.Errorf("expired entry still returned: %+v", got)
	}
}

func testPing(t *testing.T, s store.Store) {
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func jobNames(jobs []*job.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Name
	}
	return out
}
