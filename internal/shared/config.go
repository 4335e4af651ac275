package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	APIPrefix   string
	CORSOrigins []string
	RateLimit   int // requests per minute per client IP; 0 disables
	TrustProxy  bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	HostawayBase      string
	HostawayAccountID string
	HostawayKey       string
	HostawayUseMock   bool
	HostawayTimeout   time.Duration
	HostawayRPS       int

	GoogleBase string
	GoogleKey  string

	SandboxPath     string
	RefreshInterval time.Duration
	Workers         int
	SyncDaysBack    int
	SyncLimit       int
}

func Load() Config {
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8000"),
		MetricsAddr: env("METRICS_ADDR", ""),
		APIPrefix:   env("API_PREFIX", "/api/v1"),
		CORSOrigins: list("CORS_ORIGINS", []string{"http://localhost:3000", "https://*.railway.app"}),
		RateLimit:   atoi("RATE_LIMIT_PER_MIN", 120),
		TrustProxy:  boolean("TRUST_PROXY", false),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  durationSecs("CACHE_TTL_SECONDS", 300),

		HostawayBase:      env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayAccountID: env("HOSTAWAY_ACCOUNT_ID", ""),
		HostawayKey:       env("HOSTAWAY_API_KEY", ""),
		HostawayUseMock:   boolean("HOSTAWAY_USE_MOCK", false),
		HostawayTimeout:   durationSecs("HOSTAWAY_TIMEOUT_SECONDS", 30),
		HostawayRPS:       atoi("HOSTAWAY_RPS", 5),

		GoogleBase: env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		GoogleKey:  env("GOOGLE_PLACES_API_KEY", ""),

		SandboxPath:     env("SANDBOX_REVIEWS_PATH", ""),
		RefreshInterval: durationSecs("REFRESH_INTERVAL_SECONDS", 0),
		Workers:         atoi("SYNC_WORKERS", 4),
		SyncDaysBack:    atoi("SYNC_DAYS_BACK", 90),
		SyncLimit:       atoi("SYNC_REVIEW_LIMIT", 500),
	}
	c.APIPrefix = "/" + strings.Trim(c.APIPrefix, "/")
	if c.APIPrefix == "/" {
		c.APIPrefix = ""
	}
	if c.HostawayKey == "" && !c.HostawayUseMock {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty, serving the sandbox dataset")
	}
	return c
}

// UpstreamEnabled reports whether the Hostaway API should be called at all.
func (c Config) UpstreamEnabled() bool {
	return !c.HostawayUseMock && c.HostawayKey != ""
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MIN must be >= 0, got %d", c.RateLimit))
	}
	if c.HostawayRPS <= 0 {
		errs = append(errs, fmt.Errorf("HOSTAWAY_RPS must be > 0, got %d", c.HostawayRPS))
	}
	if c.HostawayTimeout <= 0 {
		errs = append(errs, errors.New("HOSTAWAY_TIMEOUT_SECONDS must be > 0"))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("SYNC_WORKERS must be > 0, got %d", c.Workers))
	}
	if c.SyncDaysBack < 1 || c.SyncDaysBack > 365 {
		errs = append(errs, fmt.Errorf("SYNC_DAYS_BACK must be within 1..365, got %d", c.SyncDaysBack))
	}
	if c.SyncLimit < 1 || c.SyncLimit > 500 {
		errs = append(errs, fmt.Errorf("SYNC_REVIEW_LIMIT must be within 1..500, got %d", c.SyncLimit))
	}
	if c.RefreshInterval < 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL_SECONDS must be >= 0"))
	}
	return errors.Join(errs...)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func durationSecs(k string, def int) time.Duration {
	return time.Duration(atoi(k, def)) * time.Second
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// list splits a comma-separated variable, dropping blanks.
func list(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
