package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"guest_reviews/internal/domain"
)

type QueryService struct {
	store    domain.ReviewStore
	cache    domain.Cache
	cacheTTL time.Duration
	// store versions restart at zero with every process; the epoch keeps a shared
	// cache from mixing aggregates of different processes
	epoch string
}

// NewQueryService wires the read side. A nil cache disables aggregate caching.
func NewQueryService(s domain.ReviewStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl, epoch: uuid.NewString()}
}

// statsKey scopes an aggregate to this process and the current store version.
func (s *QueryService) statsKey(kind string) string {
	return fmt.Sprintf("stats:%s:%s:v%d", kind, s.epoch, s.store.Version())
}

type ListQuery struct {
	Filter ReviewFilter
	Sort   SortField
	Desc   bool
	Page   domain.PageQuery
}

func (s *QueryService) ListReviews(ctx context.Context, q ListQuery) ([]domain.Review, error) {
	if err := q.Filter.Validate(); err != nil {
		return nil, err
	}
	out := q.Filter.Apply(s.store.List())
	out = SortReviews(out, q.Sort, q.Desc)
	return Paginate(out, q.Page.Offset, q.Page.Limit), nil
}

func (s *QueryService) GetReview(ctx context.Context, id string) (domain.Review, error) {
	return s.store.Get(id)
}

func (s *QueryService) UpdateReview(ctx context.Context, id string, upd domain.StatusUpdate) (domain.Review, error) {
	st, err := domain.ParseStatus(upd.Status)
	if err != nil {
		return domain.Review{}, err
	}
	return s.store.UpdateStatus(id, st, upd.Response)
}

func (s *QueryService) OverallStats(ctx context.Context) domain.OverallStats {
	key := s.statsKey("overall")
	return cached(ctx, s, key, func() domain.OverallStats {
		return OverallStats(s.store.List())
	})
}

func (s *QueryService) PropertyStats(ctx context.Context, propertyID *string) []domain.PropertyStats {
	scope := "all"
	if propertyID != nil {
		scope = "p:" + *propertyID
	}
	key := s.statsKey("properties") + ":" + scope
	return cached(ctx, s, key, func() []domain.PropertyStats {
		return PropertyStats(s.store.List(), propertyID)
	})
}

func (s *QueryService) Analytics(ctx context.Context) domain.Analytics {
	key := s.statsKey("analytics")
	return cached(ctx, s, key, func() domain.Analytics {
		return BuildAnalytics(s.store.List())
	})
}

// ListProperties returns the catalogue with review counts and averages filled in.
// Properties that only appear in reviews are appended after the catalogue entries.
func (s *QueryService) ListProperties(ctx context.Context) []domain.Property {
	stats := s.PropertyStats(ctx, nil)
	byID := make(map[string]domain.PropertyStats, len(stats))
	for _, ps := range stats {
		byID[ps.PropertyID] = ps
	}

	catalogue := s.store.Properties()
	out := make([]domain.Property, 0, len(catalogue)+len(stats))
	known := make(map[string]bool, len(catalogue))
	for _, p := range catalogue {
		known[p.ID] = true
		if ps, ok := byID[p.ID]; ok {
			p.TotalReviews = ps.TotalReviews
			p.AverageRating = ps.AverageRating
		}
		out = append(out, p)
	}
	for _, ps := range stats {
		if known[ps.PropertyID] {
			continue
		}
		out = append(out, domain.Property{
			ID:            ps.PropertyID,
			Name:          ps.PropertyName,
			TotalReviews:  ps.TotalReviews,
			AverageRating: ps.AverageRating,
		})
	}
	return out
}

func (s *QueryService) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	for _, p := range s.ListProperties(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Property{}, domain.ErrNotFound
}

func (s *QueryService) PropertyReviews(ctx context.Context, id string, q ListQuery) ([]domain.Review, error) {
	if _, err := s.GetProperty(ctx, id); err != nil {
		return nil, err
	}
	q.Filter.PropertyID = &id
	return s.ListReviews(ctx, q)
}

// PropertyStatsFor reports one property; catalogue entries without reviews get the
// zero-valued shape.
func (s *QueryService) PropertyStatsFor(ctx context.Context, id string) (domain.PropertyStats, error) {
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return domain.PropertyStats{}, err
	}
	if stats := s.PropertyStats(ctx, &id); len(stats) > 0 {
		return stats[0], nil
	}
	return EmptyPropertyStats(p.ID, p.Name), nil
}

type StoreStatus struct {
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loaded_at"`
	Reviews  int       `json:"reviews"`
	Version  uint64    `json:"version"`
}

func (s *QueryService) StoreStatus(ctx context.Context) StoreStatus {
	return StoreStatus{
		Loaded:   s.store.Loaded(),
		LoadedAt: s.store.LoadedAt(),
		Reviews:  len(s.store.List()),
		Version:  s.store.Version(),
	}
}

// cached serves key from the cache, computing and storing it on a miss.
// Cache errors are ignored; the value is always computable from the store.
func cached[T any](ctx context.Context, s *QueryService, key string, build func() T) T {
	var out T
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &out); ok && err == nil {
			return out
		}
	}
	out = build()
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out
}
