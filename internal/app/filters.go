package app

import (
	"fmt"
	"strings"
	"time"

	"guest_reviews/internal/domain"
)

// ReviewFilter is a conjunction of optional predicates. A nil field is unspecified.
type ReviewFilter struct {
	PropertyID *string
	MinRating  *float64
	MaxRating  *float64
	Source     *domain.Source
	Status     *domain.Status
	StartDate  *time.Time
	EndDate    *time.Time
	Search     *string

	rest []ReviewFilter
}

// Validate rejects inverted or out-of-range bounds.
func (f ReviewFilter) Validate() error {
	bounds := []struct {
		name string
		v    *float64
	}{{"min_rating", f.MinRating}, {"max_rating", f.MaxRating}}
	for _, b := range bounds {
		if b.v != nil && (*b.v < domain.MinRating || *b.v > domain.MaxRating) {
			return fmt.Errorf("%w: %s must be between %.0f and %.0f", domain.ErrValidation, b.name, domain.MinRating, domain.MaxRating)
		}
	}
	if f.MinRating != nil && f.MaxRating != nil && *f.MinRating > *f.MaxRating {
		return fmt.Errorf("%w: min_rating greater than max_rating", domain.ErrValidation)
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return fmt.Errorf("%w: start_date after end_date", domain.ErrValidation)
	}
	return nil
}

// Match reports whether r satisfies every specified predicate.
func (f ReviewFilter) Match(r domain.Review) bool {
	if f.PropertyID != nil && r.PropertyID != *f.PropertyID {
		return false
	}
	if f.MinRating != nil && r.Rating < *f.MinRating {
		return false
	}
	if f.MaxRating != nil && r.Rating > *f.MaxRating {
		return false
	}
	if f.Source != nil && r.Source != *f.Source {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.StartDate != nil && r.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.Date.After(*f.EndDate) {
		return false
	}
	if f.Search != nil {
		q := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(r.Comment), q) &&
			!strings.Contains(strings.ToLower(r.GuestName), q) &&
			!strings.Contains(strings.ToLower(r.PropertyName), q) {
			return false
		}
	}
	for _, g := range f.rest {
		if !g.Match(r) {
			return false
		}
	}
	return true
}

// Apply returns the matching subset in input order. The input slice is not modified.
func (f ReviewFilter) Apply(reviews []domain.Review) []domain.Review {
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// And merges two filters into their conjunction. Range bounds collapse to the tighter
// one; equality and search predicates that disagree are kept side by side.
func (f ReviewFilter) And(o ReviewFilter) ReviewFilter {
	out := f
	out.rest = append(append([]ReviewFilter(nil), f.rest...), o.rest...)
	out.MinRating = tighter(f.MinRating, o.MinRating, func(a, b float64) bool { return a > b })
	out.MaxRating = tighter(f.MaxRating, o.MaxRating, func(a, b float64) bool { return a < b })
	out.StartDate = tighter(f.StartDate, o.StartDate, func(a, b time.Time) bool { return a.After(b) })
	out.EndDate = tighter(f.EndDate, o.EndDate, func(a, b time.Time) bool { return a.Before(b) })

	var residual ReviewFilter
	out.PropertyID, residual.PropertyID = mergeEq(f.PropertyID, o.PropertyID)
	out.Source, residual.Source = mergeEq(f.Source, o.Source)
	out.Status, residual.Status = mergeEq(f.Status, o.Status)
	out.Search, residual.Search = mergeEq(f.Search, o.Search)
	if residual.PropertyID != nil || residual.Source != nil || residual.Status != nil || residual.Search != nil {
		out.rest = append(out.rest, residual)
	}
	return out
}

// tighter keeps whichever bound wins under better; nil means unbounded.
func tighter[T any](a, b *T, better func(x, y T) bool) *T {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case better(*b, *a):
		return b
	}
	return a
}

// mergeEq folds two equality predicates. When both are set and differ, the second is
// returned as a residual that must hold as well.
func mergeEq[T comparable](a, b *T) (merged, residual *T) {
	switch {
	case a == nil:
		return b, nil
	case b == nil || *a == *b:
		return a, nil
	}
	return a, b
}
