package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"guest_reviews/internal/adapters/hostaway"
	"guest_reviews/internal/adapters/observability"
	redisad "guest_reviews/internal/adapters/redis"
	"guest_reviews/internal/adapters/report"
	"guest_reviews/internal/app"
	"guest_reviews/internal/domain"
	"guest_reviews/internal/sandbox"
	"guest_reviews/internal/shared"
)

// syncer pulls every listing's reviews from Hostaway, stores the raw snapshot the
// API falls back to, and prints a per-property summary.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("base", cfg.HostawayBase).
		Int("workers", cfg.Workers).
		Int("days_back", cfg.SyncDaysBack).
		Bool("upstream", cfg.UpstreamEnabled()).
		Msg("syncer starting")

	var (
		raws     []map[string]any
		exitCode int
	)
	if cfg.UpstreamEnabled() {
		client, err := hostaway.New(cfg.HostawayBase, cfg.HostawayAccountID, cfg.HostawayKey, cfg.HostawayRPS, cfg.HostawayTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
		res, err := pull(ctx, client, cfg.Workers, cfg.SyncDaysBack, cfg.SyncLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("listings fetch failed")
		}
		raws = res.raws

		if cfg.RedisAddr == "" {
			log.Warn().Msg("REDIS_ADDR is empty, snapshot not stored")
		} else {
			cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			if err := writeSnapshot(ctx, cache, res); err != nil {
				log.Error().Err(err).Msg("snapshot not stored, previous snapshot kept")
				exitCode = 1
			}
			_ = cache.Close()
		}
	} else {
		var err error
		if raws, err = sandbox.Reviews(cfg.SandboxPath); err != nil {
			log.Fatal().Err(err).Msg("sandbox reviews unavailable")
		}
		log.Info().Msg("upstream disabled, summarizing the sandbox dataset")
	}

	reviews := app.NewHostawayNormalizer().NormalizeBatch(raws)
	if err := report.PropertyTable(os.Stdout, app.PropertyStats(reviews, nil)); err != nil {
		log.Error().Err(err).Msg("write report failed")
	}
	if err := report.SourceTable(os.Stdout, app.BuildAnalytics(reviews).SourceDistribution); err != nil {
		log.Error().Err(err).Msg("write report failed")
	}
	log.Info().Int("fetched", len(raws)).Int("normalized", len(reviews)).Msg("sync completed")
	os.Exit(exitCode)
}

type pullResult struct {
	raws     []map[string]any
	listings []map[string]any
	failed   []string // listing ids whose reviews could not be fetched
}

// complete reports whether the pull is fit to replace the stored snapshot.
func (r pullResult) complete() error {
	if len(r.failed) > 0 {
		slices.Sort(r.failed)
		return fmt.Errorf("reviews fetch failed for %d listing(s): %s", len(r.failed), strings.Join(r.failed, ", "))
	}
	if len(r.raws) == 0 {
		return errors.New("no reviews fetched")
	}
	return nil
}

// pull fetches reviews per listing with at most workers requests in flight.
func pull(ctx context.Context, src domain.ReviewSourceClient, workers, daysBack, limit int) (pullResult, error) {
	var res pullResult
	listings, err := src.GetListings(ctx)
	if err != nil {
		return res, err
	}
	res.listings = listings

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	sem := semaphore.NewWeighted(int64(workers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, l := range listings {
		id := app.PropertyFromListing(l).ID
		if id == "" {
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return res, err
		}

		wg.Add(1)
		go func(listingID string) {
			defer wg.Done()
			defer sem.Release(1)

			q := domain.ReviewsQuery{ListingID: &listingID, StartDate: &start, EndDate: &end, Limit: limit}
			rs, err := src.GetReviews(ctx, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("listing_id", listingID).Err(err).Msg("reviews fetch failed")
				res.failed = append(res.failed, listingID)
				return
			}
			res.raws = append(res.raws, rs...)
			log.Info().Str("listing_id", listingID).Int("reviews", len(rs)).Msg("listing synced")
		}(id)
	}

	wg.Wait()
	return res, nil
}

// writeSnapshot stores a complete pull. A partial or empty pull leaves the previous
// snapshot in place.
func writeSnapshot(ctx context.Context, cache domain.Cache, res pullResult) error {
	if err := res.complete(); err != nil {
		return err
	}
	if err := cache.Set(ctx, app.SnapshotReviewsKey, res.raws, 0); err != nil {
		return fmt.Errorf("write reviews snapshot: %w", err)
	}
	if err := cache.Set(ctx, app.SnapshotListingsKey, res.listings, 0); err != nil {
		return fmt.Errorf("write listings snapshot: %w", err)
	}
	log.Info().Int("reviews", len(res.raws)).Int("listings", len(res.listings)).Msg("snapshot stored")
	return nil
}
