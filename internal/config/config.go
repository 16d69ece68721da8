package config

import (
	"errors"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Dedup window policies. The source funnels disagreed on how a seen
// event_id is scoped, so both behaviors are kept behind one knob.
const (
	WindowRollingTTL  = "rolling-ttl"
	WindowCalendarDay = "calendar-day"
)

// Store backends for dedup/counter state.
const (
	StoreNone     = "none"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreUpstash  = "upstash"
	StorePostgres = "postgres"
)

// Config contains runtime configuration required by the service.
// Loaded once at boot and passed into the handlers; nothing reads
// the environment per request.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Meta Conversions API credentials. Deliberately not ,required:
	// a misconfigured deploy should answer 500 on /collect instead
	// of crash-looping.
	MetaPixelID       string `env:"META_PIXEL_ID"`
	MetaAccessToken   string `env:"META_ACCESS_TOKEN"`
	MetaAPIVersion    string `env:"META_API_VERSION" envDefault:"v18.0"`
	MetaTestEventCode string `env:"META_TEST_EVENT_CODE"`

	// Dedup/counter store. "none" disables dedup entirely: every
	// event is forwarded and nothing is counted.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"none"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	UpstashURL   string `env:"UPSTASH_REDIS_REST_URL"`
	UpstashToken string `env:"UPSTASH_REDIS_REST_TOKEN"`
	DatabaseURL  string `env:"DATABASE_URL"`

	DedupWindow string        `env:"DEDUP_WINDOW" envDefault:"rolling-ttl"`
	DedupTTL    time.Duration `env:"DEDUP_TTL" envDefault:"24h"`

	// Optional fixed-value signature header. Both must be set for
	// the check to be enforced.
	SignatureHeader string `env:"SIGNATURE_HEADER"`
	SignatureValue  string `env:"SIGNATURE_VALUE"`

	DefaultEventName string `env:"DEFAULT_EVENT_NAME" envDefault:"GroupJoinIntent"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment (plus an optional .env
// file for local development) and validates enum-style values.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Print("no .env file loaded")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	switch cfg.StoreBackend {
	case StoreNone, StoreMemory, StoreRedis, StoreUpstash, StorePostgres:
	default:
		return Config{}, errors.New(`STORE_BACKEND must be one of "none", "memory", "redis", "upstash", "postgres"`)
	}

	switch cfg.DedupWindow {
	case WindowRollingTTL, WindowCalendarDay:
	default:
		return Config{}, errors.New(`DEDUP_WINDOW must be "rolling-ttl" or "calendar-day"`)
	}

	if cfg.StoreBackend == StoreUpstash && (cfg.UpstashURL == "" || cfg.UpstashToken == "") {
		return Config{}, errors.New("UPSTASH_REDIS_REST_URL and UPSTASH_REDIS_REST_TOKEN required for upstash backend")
	}
	if cfg.StoreBackend == StorePostgres && cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL required for postgres backend")
	}

	return cfg, nil
}

// SignatureEnabled reports whether the shared-secret header check is on.
func (c Config) SignatureEnabled() bool {
	return c.SignatureHeader != "" && c.SignatureValue != ""
}

// ProviderConfigured reports whether the Conversions API credentials are set.
func (c Config) ProviderConfigured() bool {
	return c.MetaPixelID != "" && c.MetaAccessToken != ""
}
