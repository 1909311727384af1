package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Defaults for the public OROBNAT deployment.
const (
	defaultBaseURL    = "https://orobnat.sante.gouv.fr"
	defaultMenuPath   = "/orobnat/afficherPage.do"
	defaultSearchPath = "/orobnat/rechercherResultatQualite.do"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL string

	// Registry endpoints and fixed search-form values.
	OrobnatBaseURL   string
	OrobnatMenuURL   string
	OrobnatSearchURL string
	OrobnatRegionID  string
	OrobnatUsage     string
	OrobnatPosition  string

	// VerifyTLS toggles certificate validation against the registry. Off by
	// default: the endpoint is a known government host whose chain is not
	// always presented correctly, and no credentials travel on it.
	VerifyTLS bool

	// WarmupTimeout bounds the advisory menu GET; SearchTimeout the search
	// POST, which renders a full result page and is slower.
	WarmupTimeout time.Duration
	SearchTimeout time.Duration

	// BatchSleep is the default pause between municipalities in batch mode.
	BatchSleep time.Duration

	LogLevel    string
	LogFormat   string
	MetricsAddr string // empty disables the metrics listener
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	warmupTimeout, err := envDuration("OROBNAT_WARMUP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	searchTimeout, err := envDuration("OROBNAT_SEARCH_TIMEOUT", 40*time.Second)
	if err != nil {
		return nil, err
	}
	batchSleep, err := envDuration("BATCH_SLEEP", 800*time.Millisecond)
	if err != nil {
		return nil, err
	}

	base := envOrDefault("OROBNAT_BASE_URL", defaultBaseURL)

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		OrobnatBaseURL:   base,
		OrobnatMenuURL:   envOrDefault("OROBNAT_MENU_URL", base+defaultMenuPath),
		OrobnatSearchURL: envOrDefault("OROBNAT_SEARCH_URL", base+defaultSearchPath),
		OrobnatRegionID:  envOrDefault("OROBNAT_REGION_ID", "11"),
		OrobnatUsage:     envOrDefault("OROBNAT_USAGE", "AEP"),
		OrobnatPosition:  envOrDefault("OROBNAT_POS_PLV", "0"),

		VerifyTLS: envOrDefault("OROBNAT_VERIFY_TLS", "false") == "true",

		WarmupTimeout: warmupTimeout,
		SearchTimeout: searchTimeout,
		BatchSleep:    batchSleep,

		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.OrobnatMenuURL == "" || cfg.OrobnatSearchURL == "" {
		return nil, errors.New("OROBNAT_MENU_URL and OROBNAT_SEARCH_URL must not be blank")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
