package app_test

import (
	"errors"
	"testing"

	"guest_reviews/internal/app"
	"guest_reviews/internal/domain"
)

func TestParseSortField(t *testing.T) {
	for in, want := range map[string]app.SortField{
		"date": app.SortByDate, "Rating": app.SortByRating, " property ": app.SortByProperty, "": app.SortByDate,
	} {
		got, err := app.ParseSortField(in)
		if err != nil || got != want {
			t.Errorf("ParseSortField(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := app.ParseSortField("guest"); !errors.Is(err, domain.ErrInvalidSortField) {
		t.Fatalf("want ErrInvalidSortField, got %v", err)
	}
}

func TestSortReviews(t *testing.T) {
	cases := []struct {
		field app.SortField
		desc  bool
		want  string
	}{
		{app.SortByDate, true, "45231"},
		{app.SortByDate, false, "13254"},
		{app.SortByRating, true, "51324"},
		{app.SortByRating, false, "42315"},
		// byte order: upper case sorts before lower case
		{app.SortByProperty, false, "31254"},
		{app.SortByProperty, true, "45123"},
		{"unknown", true, "12345"},
	}
	for _, c := range cases {
		in := sample()
		got := app.SortReviews(in, c.field, c.desc)
		if ids(got) != c.want {
			t.Errorf("%s desc=%v: got %q want %q", c.field, c.desc, ids(got), c.want)
		}
		if ids(in) != "12345" {
			t.Fatalf("input mutated")
		}
	}
}

func TestSortReviews_StableTies(t *testing.T) {
	rs := []domain.Review{
		{ID: "a", Rating: 4}, {ID: "b", Rating: 5}, {ID: "c", Rating: 4}, {ID: "d", Rating: 5}, {ID: "e", Rating: 4},
	}
	if got := ids(app.SortReviews(rs, app.SortByRating, true)); got != "bdace" {
		t.Fatalf("desc ties: %q", got)
	}
	if got := ids(app.SortReviews(rs, app.SortByRating, false)); got != "acebd" {
		t.Fatalf("asc ties: %q", got)
	}
}

func TestSortReviews_Empty(t *testing.T) {
	if got := app.SortReviews(nil, app.SortByDate, true); got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		offset, limit int
		want          string
	}{
		{0, 0, "12345"},
		{0, 2, "12"},
		{3, 10, "45"},
		{5, 1, ""},
		{-3, 1, "1"},
	}
	for _, c := range cases {
		got := app.Paginate(sample(), c.offset, c.limit)
		if got == nil || ids(got) != c.want {
			t.Errorf("offset=%d limit=%d: got %q want %q", c.offset, c.limit, ids(got), c.want)
		}
	}
}
