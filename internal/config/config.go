package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	BaseCurrency  pricing.Currency
	CurrencyRates pricing.RateTable

	CartTTL           time.Duration
	CatalogCacheTTL   time.Duration
	RefdataCacheTTL   time.Duration
	CatalogMaxResults int
	DefaultWarehouse  int64

	SearchRateWindow time.Duration
	SearchRateMax    int

	UpstreamBaseURL string
	UpstreamAPIKey  string
	UpstreamTimeout time.Duration
	SubmitLockTTL   time.Duration
	IdempotencyTTL  time.Duration

	MigrateOnStart bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	rates, err := parseRates(k.String("CURRENCY_RATES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		BaseCurrency:       pricing.Currency(valueOrDefault(strings.ToUpper(strings.TrimSpace(k.String("BASE_CURRENCY"))), string(pricing.PYG))),
		CurrencyRates:      rates,
		CartTTL:            parseDuration(k.String("CART_TTL"), "24h"),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "30s"),
		RefdataCacheTTL:    parseDuration(k.String("REFDATA_CACHE_TTL"), "5m"),
		CatalogMaxResults:  parseInt(k.String("CATALOG_MAX_RESULTS"), 10),
		DefaultWarehouse:   int64(parseInt(k.String("DEFAULT_WAREHOUSE"), 1)),
		SearchRateWindow:   parseDuration(k.String("SEARCH_RATE_WINDOW"), "1s"),
		SearchRateMax:      parseInt(k.String("SEARCH_RATE_MAX"), 20),
		UpstreamBaseURL:    strings.TrimRight(strings.TrimSpace(k.String("UPSTREAM_BASE_URL")), "/"),
		UpstreamAPIKey:     k.String("UPSTREAM_API_KEY"),
		UpstreamTimeout:    parseDuration(k.String("UPSTREAM_TIMEOUT"), "10s"),
		SubmitLockTTL:      parseDuration(k.String("SUBMIT_LOCK_TTL"), "30s"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),
		MigrateOnStart:     parseBool(k.String("MIGRATE_ON_START")),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.UpstreamBaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}
	if _, err := cfg.CurrencyRates.Rate(cfg.BaseCurrency); err != nil {
		return nil, fmt.Errorf("BASE_CURRENCY %q has no entry in CURRENCY_RATES", cfg.BaseCurrency)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// parseRates reads a "PYG=1,USD=0.00013" style table. An empty value keeps the
// built-in defaults.
func parseRates(value string) (pricing.RateTable, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return pricing.DefaultRates(), nil
	}
	rates := pricing.RateTable{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("CURRENCY_RATES entry %q must look like CODE=rate", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("CURRENCY_RATES entry %q has an invalid rate", pair)
		}
		rates[pricing.Currency(strings.ToUpper(strings.TrimSpace(code)))] = rate
	}
	if len(rates) == 0 {
		return pricing.DefaultRates(), nil
	}
	return rates, nil
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
