//go:build integration

package redisad_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	redisad "guest_reviews/internal/adapters/redis"
)

// Runs the cache against a real Redis in Docker: go test -tags integration ./...
func TestCache_RealRedis(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.2-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	addr := fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp"))
	c := redisad.New(addr, "", 0)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	if err := pool.Retry(func() error { return c.Ping(ctx) }); err != nil {
		t.Fatalf("connect redis: %v", err)
	}

	raw := []map[string]any{{"id": float64(7453), "listingName": "Beachfront Villa"}}
	if err := c.Set(ctx, "snapshot:hostaway:reviews", raw, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got []map[string]any
	ok, err := c.Get(ctx, "snapshot:hostaway:reviews", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0]["listingName"] != "Beachfront Villa" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}
