package app_test

import (
	"errors"
	"testing"
	"time"

	"guest_reviews/internal/app"
	"guest_reviews/internal/domain"
)

func day(d int) time.Time { return time.Date(2024, 6, d, 12, 0, 0, 0, time.UTC) }

func sample() []domain.Review {
	return []domain.Review{
		{ID: "1", PropertyID: "p1", PropertyName: "Luxury Downtown Loft", GuestName: "Ana", Rating: 4.8, Comment: "Spotless and quiet", Date: day(1), Source: domain.SourceAirbnb, Status: domain.StatusApproved},
		{ID: "2", PropertyID: "p1", PropertyName: "Luxury Downtown Loft", GuestName: "Bo", Rating: 2.0, Comment: "Noisy street", Date: day(5), Source: domain.SourceBooking, Status: domain.StatusPending},
		{ID: "3", PropertyID: "p2", PropertyName: "Beachfront Villa", GuestName: "Cy", Rating: 3.5, Comment: "ok", Date: day(3), Source: domain.SourceAirbnb, Status: domain.StatusRejected},
		{ID: "4", PropertyID: "p2", PropertyName: "beachfront villa", GuestName: "Dee", Rating: 0, Ratingless: true, Comment: "", Date: day(9), Source: domain.SourceUnknown, Status: domain.StatusPending},
		{ID: "5", PropertyID: "p3", PropertyName: "Mountain Retreat Cabin", GuestName: "Quiet Ed", Rating: 5.0, Comment: "Cozy", Date: day(7), Source: domain.SourceGoogle, Status: domain.StatusApproved},
	}
}

func ids(rs []domain.Review) string {
	out := ""
	for _, r := range rs {
		out += r.ID
	}
	return out
}

func TestFilter_Predicates(t *testing.T) {
	src := domain.SourceAirbnb
	st := domain.StatusPending
	cases := []struct {
		name string
		f    app.ReviewFilter
		want string
	}{
		{"empty matches all", app.ReviewFilter{}, "12345"},
		{"property", app.ReviewFilter{PropertyID: ptr("p2")}, "34"},
		{"min rating", app.ReviewFilter{MinRating: ptr(3.5)}, "135"},
		{"max rating", app.ReviewFilter{MaxRating: ptr(3.5)}, "234"},
		{"rating range", app.ReviewFilter{MinRating: ptr(2.0), MaxRating: ptr(4.0)}, "23"},
		{"source", app.ReviewFilter{Source: &src}, "13"},
		{"status", app.ReviewFilter{Status: &st}, "24"},
		{"date range inclusive", app.ReviewFilter{StartDate: ptr(day(3)), EndDate: ptr(day(7))}, "235"},
		{"search comment", app.ReviewFilter{Search: ptr("NOISY")}, "2"},
		{"search guest or comment", app.ReviewFilter{Search: ptr("quiet")}, "15"},
		{"search property", app.ReviewFilter{Search: ptr("villa")}, "34"},
		{"conjunction", app.ReviewFilter{Source: &src, MinRating: ptr(4.0)}, "1"},
		{"nothing", app.ReviewFilter{PropertyID: ptr("nope")}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ids(c.f.Apply(sample())); got != c.want {
				t.Fatalf("got %q want %q", got, c.want)
			}
		})
	}
}

func TestFilter_ApplyDoesNotMutateAndNeverNil(t *testing.T) {
	in := sample()
	out := app.ReviewFilter{PropertyID: ptr("none")}.Apply(in)
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", out)
	}
	if ids(in) != "12345" {
		t.Fatalf("input mutated")
	}
}

func TestFilter_AndEqualsSequentialApply(t *testing.T) {
	airbnb := domain.SourceAirbnb
	pending := domain.StatusPending
	filters := []app.ReviewFilter{
		{},
		{MinRating: ptr(2.0)},
		{MaxRating: ptr(4.0), Source: &airbnb},
		{PropertyID: ptr("p1")},
		{PropertyID: ptr("p2")},
		{Status: &pending, Search: ptr("street")},
		{Search: ptr("o")},
		{StartDate: ptr(day(2)), EndDate: ptr(day(8))},
	}
	for i, f1 := range filters {
		for j, f2 := range filters {
			seq := f2.Apply(f1.Apply(sample()))
			merged := f1.And(f2).Apply(sample())
			if ids(seq) != ids(merged) {
				t.Errorf("filters %d∧%d: sequential %q, merged %q", i, j, ids(seq), ids(merged))
			}
		}
	}
}

func TestFilter_Validate(t *testing.T) {
	bad := []app.ReviewFilter{
		{MinRating: ptr(4.0), MaxRating: ptr(2.0)},
		{MinRating: ptr(0.5)},
		{MaxRating: ptr(6.0)},
		{StartDate: ptr(day(9)), EndDate: ptr(day(1))},
	}
	for i, f := range bad {
		if err := f.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: want ErrValidation, got %v", i, err)
		}
	}
	ok := app.ReviewFilter{MinRating: ptr(1.0), MaxRating: ptr(5.0), StartDate: ptr(day(1)), EndDate: ptr(day(1))}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
