package app

import (
	"fmt"
	"slices"
	"strings"

	"guest_reviews/internal/domain"
)

type SortField string

const (
	SortByDate     SortField = "date"
	SortByRating   SortField = "rating"
	SortByProperty SortField = "property"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByDate, SortByRating, SortByProperty:
		return f, nil
	case "":
		return SortByDate, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidSortField, s)
}

func compareBy(field SortField) func(a, b domain.Review) int {
	switch field {
	case SortByDate:
		return func(a, b domain.Review) int { return a.Date.Compare(b.Date) }
	case SortByRating:
		return func(a, b domain.Review) int {
			switch {
			case a.Rating < b.Rating:
				return -1
			case a.Rating > b.Rating:
				return 1
			}
			return 0
		}
	case SortByProperty:
		// byte-wise, so "Zeta" sorts before "alpha"
		return func(a, b domain.Review) int { return strings.Compare(a.PropertyName, b.PropertyName) }
	}
	return nil
}

// SortReviews returns a stably sorted copy; equal keys keep their input order in both
// directions. An unrecognised field yields an unchanged copy.
func SortReviews(reviews []domain.Review, field SortField, desc bool) []domain.Review {
	out := slices.Clone(reviews)
	if out == nil {
		out = []domain.Review{}
	}
	cmp := compareBy(field)
	if cmp == nil {
		return out
	}
	if desc {
		asc := cmp
		cmp = func(a, b domain.Review) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// Paginate applies offset/limit. A non-positive limit means no limit.
func Paginate(reviews []domain.Review, offset, limit int) []domain.Review {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(reviews) {
		return []domain.Review{}
	}
	end := len(reviews)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return slices.Clone(reviews[offset:end])
}
