package hostaway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"guest_reviews/internal/adapters/hostaway"
	"guest_reviews/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestClient_RequiresKey(t *testing.T) {
	if _, err := hostaway.New("", "", "", 5, time.Second); err == nil {
		t.Fatalf("expected error without API key")
	}
}

func TestClient_GetReviews_OAuthAndQuery(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/accessTokens", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		_ = r.ParseForm()
		if r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("client_id") != "61148" ||
			r.Form.Get("client_secret") != "secret" || r.Form.Get("scope") != "general" {
			t.Errorf("unexpected token form: %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token_type": "Bearer", "expires_in": 3600, "access_token": "tok",
		})
	})
	mux.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("listingId") != "prop_001" || q.Get("limit") != "50" || q.Get("startDate") != "2024-01-01T00:00:00" {
			t.Errorf("unexpected query: %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"result": []map[string]any{{"id": 7453, "rating": 9}},
		})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "61148", "secret", 100, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		got, err := cl.GetReviews(context.Background(), domain.ReviewsQuery{
			ListingID: ptr("prop_001"), StartDate: &start, Limit: 50,
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(got) != 1 || got[0]["id"].(float64) != 7453 {
			t.Fatalf("unexpected payload: %+v", got)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Fatalf("token should be reused, fetched %d times", n)
	}
}

func TestClient_GetListings_BearerKeyAndRetries(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer key")
		}
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "result": []map[string]any{{"id": 1}}})
	}))
	defer ts.Close()

	cl, _ := hostaway.New(ts.URL, "", "key", 100, 2*time.Second)
	got, err := cl.GetListings(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("got %d listings after %d calls", len(got), hits)
	}
}

func TestClient_FailureIsUpstreamUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "fail", "message": "bad account"})
	}))
	defer ts.Close()

	cl, _ := hostaway.New(ts.URL, "", "key", 100, time.Second)
	_, err := cl.GetReviews(context.Background(), domain.ReviewsQuery{})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("want ErrUpstreamUnavailable, got %v", err)
	}

	ts404 := httptest.NewServer(http.NotFoundHandler())
	defer ts404.Close()
	cl, _ = hostaway.New(ts404.URL, "", "key", 100, time.Second)
	if _, err := cl.GetListings(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestClient_EmptyResultIsEmptySlice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","result":null}`))
	}))
	defer ts.Close()

	cl, _ := hostaway.New(ts.URL, "", "key", 100, time.Second)
	got, err := cl.GetReviews(context.Background(), domain.ReviewsQuery{})
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v, %v", got, err)
	}
}
