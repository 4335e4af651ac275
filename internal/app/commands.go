package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"guest_reviews/internal/adapters/observability"
	"guest_reviews/internal/domain"
	"guest_reviews/internal/sandbox"
)

const (
	SnapshotReviewsKey  = "snapshot:hostaway:reviews"
	SnapshotListingsKey = "snapshot:hostaway:listings"

	OriginUpstream = "upstream"
	OriginSnapshot = "snapshot"
	OriginSandbox  = "sandbox"
)

type SyncOptions struct {
	UseMock     bool // skip the upstream and load the sandbox dataset
	SandboxPath string
	Timeout     time.Duration
	DaysBack    int
	Limit       int
}

// SyncService loads upstream reviews into the store. Upstream failures degrade to the
// last good snapshot and then to the sandbox dataset; they are never surfaced to readers.
type SyncService struct {
	source domain.ReviewSourceClient
	store  domain.ReviewStore
	cache  domain.Cache
	norm   *Normalizer
	opts   SyncOptions
	now    func() time.Time

	mu sync.Mutex // one load at a time
}

// NewSyncService wires a sync service. source and cache may be nil.
func NewSyncService(src domain.ReviewSourceClient, store domain.ReviewStore, cache domain.Cache, opts SyncOptions) *SyncService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = 90
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	return &SyncService{
		source: src,
		store:  store,
		cache:  cache,
		norm:   NewHostawayNormalizer(),
		opts:   opts,
		now:    time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	s.norm = s.norm.WithClock(now)
	return s
}

// Load performs the startup load of the full dataset.
func (s *SyncService) Load(ctx context.Context) (domain.SyncResult, error) {
	return s.Sync(ctx, nil)
}

// Sync refreshes the store. With a property id only that property's reviews are
// replaced; the rest of the store is kept as is.
func (s *SyncService) Sync(ctx context.Context, propertyID *string) (domain.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := s.now().UTC()
	start := end.AddDate(0, 0, -s.opts.DaysBack)
	q := domain.ReviewsQuery{ListingID: propertyID, StartDate: &start, EndDate: &end, Limit: s.opts.Limit}

	raws, listings, origin, err := s.fetch(ctx, q)
	if err != nil {
		return domain.SyncResult{}, err
	}

	reviews := s.norm.NormalizeBatch(raws)
	observeSources(reviews)
	if propertyID != nil {
		reviews = ReviewFilter{PropertyID: propertyID}.Apply(reviews)
		reviews = append(otherProperties(s.store.List(), *propertyID), reviews...)
	}
	s.store.Replace(reviews)

	if props := s.properties(listings); len(props) > 0 {
		s.store.ReplaceProperties(props)
	}

	res := domain.SyncResult{
		SyncedAt:        s.now().UTC().Format(time.RFC3339),
		Origin:          origin,
		TotalFetched:    len(raws),
		TotalNormalized: len(reviews),
		PropertyID:      propertyID,
		DateRange: &domain.DateRange{
			Start: start.Format(time.RFC3339),
			End:   end.Format(time.RFC3339),
		},
	}
	log.Info().Str("origin", origin).Int("fetched", res.TotalFetched).
		Int("normalized", res.TotalNormalized).Msg("reviews loaded")
	return res, nil
}

// Run calls Sync every interval until ctx is done.
func (s *SyncService) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Sync(ctx, nil); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("periodic sync failed")
			}
		}
	}
}

// FetchLive queries the upstream directly, without fallback, and normalizes the result.
func (s *SyncService) FetchLive(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	if s.source == nil || s.opts.UseMock {
		return nil, fmt.Errorf("%w: upstream disabled", domain.ErrUpstreamUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	raws, err := s.source.GetReviews(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizeBatch(raws), nil
}

// Listings returns the raw upstream listings.
func (s *SyncService) Listings(ctx context.Context) ([]map[string]any, error) {
	if s.source == nil || s.opts.UseMock {
		return nil, fmt.Errorf("%w: upstream disabled", domain.ErrUpstreamUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	return s.source.GetListings(ctx)
}

func (s *SyncService) fetch(ctx context.Context, q domain.ReviewsQuery) (raws, listings []map[string]any, origin string, err error) {
	if s.source == nil || s.opts.UseMock {
		raws, err = sandbox.Reviews(s.opts.SandboxPath)
		return raws, nil, OriginSandbox, err
	}

	raws, listings, err = s.fetchUpstream(ctx, q)
	if err == nil {
		if q.ListingID == nil {
			s.saveSnapshot(ctx, raws, listings)
		}
		return raws, listings, OriginUpstream, nil
	}
	log.Warn().Err(err).Msg("upstream fetch failed, falling back")

	if s.cache != nil {
		var snap []map[string]any
		if ok, cerr := s.cache.Get(ctx, SnapshotReviewsKey, &snap); cerr == nil && ok {
			var snapListings []map[string]any
			_, _ = s.cache.Get(ctx, SnapshotListingsKey, &snapListings)
			observability.ObserveFallback(OriginSnapshot)
			return snap, snapListings, OriginSnapshot, nil
		} else if cerr != nil {
			log.Warn().Err(cerr).Msg("snapshot read failed")
		}
	}

	raws, err = sandbox.Reviews(s.opts.SandboxPath)
	if err != nil {
		return nil, nil, "", err
	}
	observability.ObserveFallback(OriginSandbox)
	return raws, nil, OriginSandbox, nil
}

// fetchUpstream pulls reviews and listings concurrently under one timeout.
// Listings are best effort.
func (s *SyncService) fetchUpstream(ctx context.Context, q domain.ReviewsQuery) (raws, listings []map[string]any, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raws, err = s.source.GetReviews(gctx, q)
		return err
	})
	g.Go(func() error {
		ls, err := s.source.GetListings(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("listings fetch failed")
			return nil
		}
		listings = ls
		return nil
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return nil, nil, err
	}
	return raws, listings, nil
}

func (s *SyncService) saveSnapshot(ctx context.Context, raws, listings []map[string]any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, SnapshotReviewsKey, raws, 0); err != nil {
		log.Warn().Err(err).Msg("snapshot write failed")
		return
	}
	if len(listings) > 0 {
		_ = s.cache.Set(ctx, SnapshotListingsKey, listings, 0)
	}
}

// properties maps upstream listings to the catalogue, falling back to the sandbox one.
func (s *SyncService) properties(listings []map[string]any) []domain.Property {
	if len(listings) > 0 {
		out := make([]domain.Property, 0, len(listings))
		for _, l := range listings {
			if p := PropertyFromListing(l); p.ID != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	ps, err := sandbox.Properties()
	if err != nil {
		log.Error().Err(err).Msg("sandbox properties unavailable")
		return nil
	}
	return ps
}

func otherProperties(rs []domain.Review, propertyID string) []domain.Review {
	out := make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		if r.PropertyID != propertyID {
			out = append(out, r)
		}
	}
	return out
}

func observeSources(rs []domain.Review) {
	counts := map[domain.Source]int{}
	for _, r := range rs {
		counts[r.Source]++
	}
	for src, n := range counts {
		observability.ObserveNormalized(string(src), n)
	}
}
