package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"guest_reviews/internal/app"
	"guest_reviews/internal/domain"
	"guest_reviews/internal/storage/memory"
)

// ---- fakes ----

type fakeCache struct {
	store map[string][]byte
	gets  int
	hits  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.gets++
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func newStore() *memory.Store {
	st := memory.New()
	st.Replace(sample())
	st.ReplaceProperties([]domain.Property{
		{ID: "p1", Name: "Luxury Downtown Loft", City: "New York"},
		{ID: "p2", Name: "Beachfront Villa", City: "Miami"},
		{ID: "p9", Name: "Empty Cabin", City: "Aspen"},
	})
	return st
}

// ---- tests ----

func TestListReviews_FilterSortPage(t *testing.T) {
	q := app.NewQueryService(newStore(), nil, time.Minute)

	got, err := q.ListReviews(context.Background(), app.ListQuery{
		Filter: app.ReviewFilter{MinRating: ptr(2.0)},
		Sort:   app.SortByRating,
		Desc:   true,
		Page:   domain.PageQuery{Offset: 1, Limit: 2},
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// rated >= 2 by rating desc: 5, 1, 3, 2 → page [1, 3]
	if ids(got) != "13" {
		t.Fatalf("got %q", ids(got))
	}

	_, err = q.ListReviews(context.Background(), app.ListQuery{
		Filter: app.ReviewFilter{MinRating: ptr(5.0), MaxRating: ptr(1.0)},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestUpdateReview(t *testing.T) {
	q := app.NewQueryService(newStore(), nil, time.Minute)
	ctx := context.Background()

	r, err := q.UpdateReview(ctx, "2", domain.StatusUpdate{Status: "approved", Response: ptr("Sorry about the noise")})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if r.Status != domain.StatusApproved || *r.Response != "Sorry about the noise" {
		t.Fatalf("unexpected review: %+v", r)
	}
	if _, err := q.UpdateReview(ctx, "2", domain.StatusUpdate{Status: "archived"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if _, err := q.UpdateReview(ctx, "nope", domain.StatusUpdate{Status: "approved"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestOverallStats_CachedPerVersion(t *testing.T) {
	st := newStore()
	cache := &fakeCache{}
	q := app.NewQueryService(st, cache, 10*time.Minute)
	ctx := context.Background()

	first := q.OverallStats(ctx)
	if first.ApprovedReviews != 2 {
		t.Fatalf("unexpected stats: %+v", first)
	}
	_ = q.OverallStats(ctx)
	if cache.hits != 1 {
		t.Fatalf("second read should hit the cache, hits=%d", cache.hits)
	}

	// a write bumps the store version, so the next read recomputes
	if _, err := st.UpdateStatus("2", domain.StatusApproved, nil); err != nil {
		t.Fatal(err)
	}
	if got := q.OverallStats(ctx); got.ApprovedReviews != 3 {
		t.Fatalf("stale stats after write: %+v", got)
	}
}

func TestOverallStats_SharedCacheAcrossProcesses(t *testing.T) {
	// two services over independent stores that reach the same version
	cache := &fakeCache{}
	st1, st2 := newStore(), newStore()
	q1 := app.NewQueryService(st1, cache, 10*time.Minute)
	q2 := app.NewQueryService(st2, cache, 10*time.Minute)
	ctx := context.Background()

	if _, err := st1.UpdateStatus("2", domain.StatusApproved, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := st2.UpdateStatus("2", domain.StatusRejected, nil); err != nil {
		t.Fatal(err)
	}
	if st1.Version() != st2.Version() {
		t.Fatalf("versions diverged: %d vs %d", st1.Version(), st2.Version())
	}

	if got := q1.OverallStats(ctx); got.ApprovedReviews != 3 {
		t.Fatalf("q1 stats: %+v", got)
	}
	if got := q2.OverallStats(ctx); got.ApprovedReviews != 2 {
		t.Fatalf("q2 served another store's aggregate: %+v", got)
	}
	if got := q2.Analytics(ctx); len(got.RatingDistribution) != 5 {
		t.Fatalf("q2 analytics: %+v", got)
	}
	if cache.hits != 0 {
		t.Fatalf("no key should be shared between the services, hits=%d", cache.hits)
	}
}

func TestPropertyStats_CacheRoundTrip(t *testing.T) {
	cache := &fakeCache{}
	q := app.NewQueryService(newStore(), cache, 10*time.Minute)
	ctx := context.Background()

	a := q.PropertyStats(ctx, nil)
	b := q.PropertyStats(ctx, nil)
	if cache.hits != 1 || len(a) != len(b) || b[0].RatingDistribution[4] != 1 {
		t.Fatalf("cached stats differ: hits=%d %+v", cache.hits, b)
	}
	if one := q.PropertyStats(ctx, ptr("p2")); len(one) != 1 || one[0].PropertyID != "p2" {
		t.Fatalf("scoped stats: %+v", one)
	}
}

func TestListProperties(t *testing.T) {
	q := app.NewQueryService(newStore(), nil, time.Minute)
	ps := q.ListProperties(context.Background())

	if len(ps) != 4 {
		t.Fatalf("want catalogue + review-only property, got %d", len(ps))
	}
	if ps[0].ID != "p1" || ps[0].TotalReviews != 2 || ps[0].AverageRating != 3.4 {
		t.Fatalf("p1: %+v", ps[0])
	}
	if ps[2].ID != "p9" || ps[2].TotalReviews != 0 {
		t.Fatalf("p9: %+v", ps[2])
	}
	if ps[3].ID != "p3" || ps[3].Name != "Mountain Retreat Cabin" {
		t.Fatalf("review-only property: %+v", ps[3])
	}
}

func TestPropertyEndpoints(t *testing.T) {
	q := app.NewQueryService(newStore(), nil, time.Minute)
	ctx := context.Background()

	if _, err := q.GetProperty(ctx, "zzz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	rs, err := q.PropertyReviews(ctx, "p1", app.ListQuery{Sort: app.SortByDate, Desc: true})
	if err != nil || ids(rs) != "21" {
		t.Fatalf("property reviews: %q %v", ids(rs), err)
	}
	if _, err := q.PropertyReviews(ctx, "zzz", app.ListQuery{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	empty, err := q.PropertyStatsFor(ctx, "p9")
	if err != nil || empty.TotalReviews != 0 || empty.PropertyName != "Empty Cabin" || len(empty.RatingDistribution) != 5 {
		t.Fatalf("empty property stats: %+v %v", empty, err)
	}
	full, err := q.PropertyStatsFor(ctx, "p2")
	if err != nil || full.TotalReviews != 2 {
		t.Fatalf("p2 stats: %+v %v", full, err)
	}
}
