package upstream

import (
	"net/http"
	"testing"
	"time"
)

func TestRetryAfter(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"junk", 0},
		{"-1", 0},
	}
	for _, c := range cases {
		resp := &http.Response{Header: http.Header{}}
		if c.header != "" {
			resp.Header.Set("Retry-After", c.header)
		}
		if got := retryAfter(resp); got != c.want {
			t.Errorf("Retry-After %q: got %v want %v", c.header, got, c.want)
		}
	}

	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	resp := &http.Response{Header: http.Header{"Retry-After": {future}}}
	if got := retryAfter(resp); got <= 0 || got > 11*time.Second {
		t.Errorf("http-date form: got %v", got)
	}
}

func TestBackoffBounds(t *testing.T) {
	for i := 0; i < 4; i++ {
		base := time.Duration(1<<i) * 200 * time.Millisecond
		d := backoff(i)
		if d < base || d > base+base/2 {
			t.Fatalf("attempt %d: %v outside [%v, %v]", i, d, base, base+base/2)
		}
	}
}
