package middleware_test

import (
	"context"
	"testing"

	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
	"github.com/xraph/tick/middleware"
	"github.com/xraph/tick/scope"
)

func TestScope_AttachesTenant(t *testing.T) {
	j := &job.Job{Name: "billing-sync", ID: id.NewJobID(), TenantID: "tn_42"}

	var got string
	var ok bool
	handler := func(ctx context.Context) error {
		got, ok = scope.TenantID(ctx)
		return nil
	}

	if err := middleware.Scope()(context.Background(), j, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a tenant on the handler context")
	}
	if got != "tn_42" {
		t.Errorf("tenant = %q, want %q", got, "tn_42")
	}
}

func TestScope_NoTenant(t *testing.T) {
	j := &job.Job{Name: "cleanup", ID: id.NewJobID()}

	handler := func(ctx context.Context) error {
		if _, ok := scope.TenantID(ctx); ok {
			t.Error("expected no tenant on the handler context")
		}
		return nil
	}

	if err := middleware.Scope()(context.Background(), j, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
