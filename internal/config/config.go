package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// WeatherAPIKey authenticates against the weather provider. It is
	// the one required credential: without it no endpoint can work.
	WeatherAPIKey string

	// BraveSearchAPIKey is optional; without it environmental summaries
	// degrade to their no-data sentinel.
	BraveSearchAPIKey string

	// GoogleAPIKey is optional; without it search snippets are not
	// condensed and the AI-fallback path is unavailable.
	GoogleAPIKey string

	// CacheDuration controls how long a weather report is served
	// without refetching. Deployment targets tune this per environment.
	CacheDuration time.Duration

	// EnvCacheDuration controls how long pollen/yellow-sand summaries
	// are reused; supplementary data changes slowly.
	EnvCacheDuration time.Duration

	// ErrorCooldown is the per-dependency retry suppression window
	// after an upstream failure.
	ErrorCooldown time.Duration

	// RefreshInterval drives the cache-warming scheduler; 0 disables it.
	RefreshInterval time.Duration

	// HTTPTimeout bounds every outbound upstream call.
	HTTPTimeout time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_KEY")
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHERAPI_KEY is required")
	}

	cfg.BraveSearchAPIKey = os.Getenv("BRAVE_SEARCH_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	var err error
	if cfg.CacheDuration, err = getenvDuration("CACHE_DURATION", "3h"); err != nil {
		return nil, err
	}
	if cfg.EnvCacheDuration, err = getenvDuration("ENV_CACHE_DURATION", "24h"); err != nil {
		return nil, err
	}
	if cfg.ErrorCooldown, err = getenvDuration("ERROR_COOLDOWN", "30m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "6h"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
