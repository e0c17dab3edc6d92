//go:build integration
// +build integration

package redis_test

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
	"github.com/xraph/tick/store"
	redisstore "github.com/xraph/tick/store/redis"
	"github.com/xraph/tick/store/storetest"
)

// TestConformance runs the shared store suite against a real Redis.
// Point TICK_TEST_REDIS_ADDR at a disposable instance; the suite
// deletes every tick:* key between cases.
func TestConformance(t *testing.T) {
	addr := os.Getenv("TICK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TICK_TEST_REDIS_ADDR not set, skipping integration tests")
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis at %s unavailable: %v", addr, err)
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		flushKeys(t, client, "tick:*")
		return redisstore.New(client)
	})
}

// TestKeyPrefixIsolation verifies two stores with distinct prefixes can
// share a server without seeing each other's jobs.
func TestKeyPrefixIsolation(t *testing.T) {
	addr := os.Getenv("TICK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TICK_TEST_REDIS_ADDR not set, skipping integration tests")
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	flushKeys(t, client, "ticka:*")
	flushKeys(t, client, "tickb:*")
	t.Cleanup(func() {
		flushKeys(t, client, "ticka:*")
		flushKeys(t, client, "tickb:*")
	})

	ctx := context.Background()
	a := redisstore.New(client, redisstore.WithKeyPrefix("ticka:"))
	b := redisstore.New(client, redisstore.WithKeyPrefix("tickb:"))

	j := &job.Job{
		ID:           id.NewJobID(),
		Name:         "prefix-isolation",
		Schedule:     "hourly",
		FunctionName: "noop",
		Active:       true,
	}
	if err := a.CreateJob(ctx, j); err != nil {
		t.Fatalf("create in store a: %v", err)
	}

	if _, err := a.GetJob(ctx, j.ID); err != nil {
		t.Errorf("store a lost its own job: %v", err)
	}
	fromB, err := b.ListJobs(ctx, job.Filter{})
	if err != nil {
		t.Fatalf("list in store b: %v", err)
	}
	if len(fromB) != 0 {
		t.Errorf("store b sees %d jobs from store a's prefix", len(fromB))
	}
}

func flushKeys(t *testing.T, client *goredis.Client, pattern string) {
	t.Helper()
	ctx := context.Background()
	keys, err := client.Keys(ctx, pattern).Result()
	if err != nil {
		t.Fatalf("list %s keys: %v", pattern, err)
	}
	if len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		t.Fatalf("delete %s keys: %v", pattern, err)
	}
}
