package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"guest_reviews/internal/adapters/google"
	"guest_reviews/internal/adapters/hostaway"
	server "guest_reviews/internal/adapters/http_server"
	"guest_reviews/internal/adapters/observability"
	redisad "guest_reviews/internal/adapters/redis"
	"guest_reviews/internal/app"
	"guest_reviews/internal/domain"
	"guest_reviews/internal/shared"
	"guest_reviews/internal/storage/memory"
)

func main() {
	// a missing .env is fine; the process environment wins either way
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without cache")
			_ = rc.Close()
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
			cache = rc
			defer rc.Close()
		}
		cancel()
	}

	var source domain.ReviewSourceClient
	if cfg.UpstreamEnabled() {
		hc, err := hostaway.New(cfg.HostawayBase, cfg.HostawayAccountID, cfg.HostawayKey, cfg.HostawayRPS, cfg.HostawayTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
		source = hc
	}

	var places domain.PlacesClient
	if cfg.GoogleKey != "" {
		gc, err := google.New(cfg.GoogleBase, cfg.GoogleKey, cfg.HostawayRPS, cfg.HostawayTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Google Places client")
		}
		places = gc
	}

	store := memory.New()
	sync := app.NewSyncService(source, store, cache, app.SyncOptions{
		UseMock:     cfg.HostawayUseMock,
		SandboxPath: cfg.SandboxPath,
		Timeout:     cfg.HostawayTimeout,
		DaysBack:    cfg.SyncDaysBack,
		Limit:       cfg.SyncLimit,
	})
	if _, err := sync.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("initial review load failed")
	}
	go sync.Run(ctx, cfg.RefreshInterval)

	q := app.NewQueryService(store, cache, cfg.CacheTTL)

	// http
	srv := server.New(server.Options{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimit,
		TrustProxy:      cfg.TrustProxy,
		Timeout:         30 * time.Second,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(q, sync, places), cfg.APIPrefix)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("prefix", cfg.APIPrefix).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
