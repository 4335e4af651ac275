// Package memory holds the review collection for the lifetime of the process.
package memory

import (
	"slices"
	"sync"
	"time"

	"guest_reviews/internal/adapters/observability"
	"guest_reviews/internal/domain"
)

// Store is a copy-on-write review store. Readers get copies; writers are serialized by
// the write lock and swap whole records so a reader never sees a half-applied update.
type Store struct {
	mu       sync.RWMutex
	reviews  []domain.Review
	index    map[string]int
	props    []domain.Property
	version  uint64
	loadedAt time.Time
	now      func() time.Time
}

func New() *Store {
	return &Store{index: map[string]int{}, now: time.Now}
}

// Replace swaps in a freshly loaded batch. Moderation state of ids already present
// (status, response, updated_at) is carried over.
func (s *Store) Replace(rs []domain.Review) {
	next := make([]domain.Review, len(rs))
	idx := make(map[string]int, len(rs))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range rs {
		if j, ok := s.index[r.ID]; ok {
			prev := s.reviews[j]
			r.Status = prev.Status
			r.Response = cloneStr(prev.Response)
			r.UpdatedAt = prev.UpdatedAt
		}
		next[i] = r
		idx[r.ID] = i
	}
	s.reviews = next
	s.index = idx
	s.version++
	s.loadedAt = s.now().UTC()
	observability.ObserveStoreSize(len(next))
}

func (s *Store) List() []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, len(s.reviews))
	for i, r := range s.reviews {
		out[i] = copyReview(r)
	}
	return out
}

func (s *Store) Get(id string) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return copyReview(s.reviews[i]), nil
}

// UpdateStatus sets status and response on one review and bumps updated_at.
// A nil response leaves the existing response untouched.
func (s *Store) UpdateStatus(id string, status domain.Status, response *string) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}

	// copy-on-write: readers holding the old slice keep a consistent record
	next := slices.Clone(s.reviews)
	r := copyReview(next[i])
	r.Status = status
	if response != nil {
		r.Response = cloneStr(response)
	}
	r.UpdatedAt = s.now().UTC()
	next[i] = r
	s.reviews = next
	s.version++
	return copyReview(r), nil
}

func (s *Store) ReplaceProperties(ps []domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props = slices.Clone(ps)
	s.version++
}

func (s *Store) Properties() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.props)
	if out == nil {
		out = []domain.Property{}
	}
	return out
}

func (s *Store) Property(id string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.props {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Property{}, domain.ErrNotFound
}

// Version changes on every write; callers use it to key derived data.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loadedAt.IsZero()
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func copyReview(r domain.Review) domain.Review {
	r.Response = cloneStr(r.Response)
	return r
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
