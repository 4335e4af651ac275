package sandbox_test

import (
	"os"
	"path/filepath"
	"testing"

	"guest_reviews/internal/sandbox"
)

func TestBundledReviews(t *testing.T) {
	rs, err := sandbox.Reviews("")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rs) < 10 {
		t.Fatalf("expected a realistic dataset, got %d records", len(rs))
	}
	seen := map[any]bool{}
	for _, r := range rs {
		if seen[r["id"]] {
			t.Fatalf("duplicate id %v", r["id"])
		}
		seen[r["id"]] = true
	}
}

func TestBundledProperties(t *testing.T) {
	ps, err := sandbox.Properties()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ps) != 3 {
		t.Fatalf("want 3 properties, got %d", len(ps))
	}
	if ps[1].ID != "prop_002" || ps[1].Name != "Beachfront Villa" || ps[1].City != "Miami" ||
		ps[1].ImageURL == "" {
		t.Fatalf("unexpected property: %+v", ps[1])
	}
}

func TestReviewsFromFile(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"envelope.json": `{"status":"success","result":[{"id":1},{"id":2}]}`,
		"array.json":    `[{"id":1},{"id":2}]`,
		"reviews.json":  `{"reviews":[{"id":1},{"id":2}]}`,
	}
	for name, body := range cases {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		rs, err := sandbox.Reviews(p)
		if err != nil || len(rs) != 2 {
			t.Fatalf("%s: got %d records, err %v", name, len(rs), err)
		}
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"status":"success","result":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if rs, err := sandbox.Reviews(empty); err != nil || rs == nil || len(rs) != 0 {
		t.Fatalf("empty envelope: %v %v", rs, err)
	}

	// an object without a known list key is a mistake, not an empty dataset
	odd := filepath.Join(dir, "odd.json")
	if err := os.WriteFile(odd, []byte(`{"data":[{"id":1}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := sandbox.Reviews(odd); err == nil {
		t.Fatal("expected error for unknown envelope")
	}

	if _, err := sandbox.Reviews(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
