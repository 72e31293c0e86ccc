package provider

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ProviderType selects the directory implementation.
type ProviderType string

const (
	ProviderAPI ProviderType = "api"
	ProviderCSV ProviderType = "csv"
)

// Config holds upstream settings shared by directory providers and the
// geocoder.
type Config struct {
	Provider           ProviderType
	DirectoryURL       string
	DirectoryCSVPath   string
	DirectoryRateLimit float64
	GeocoderURL        string
	GeocoderRateLimit  float64
	Timeout            time.Duration
}

const (
	DefaultDirectoryURL = "https://data.occitanie.education.gouv.fr/api/explore/v2.1"
	DefaultGeocoderURL  = "https://api-adresse.data.gouv.fr"
	DefaultTimeout      = 10 * time.Second
)

// LoadFromEnv reads the provider configuration from environment variables.
// Missing values fall back to the public endpoints.
func LoadFromEnv() Config {
	cfg := Config{
		Provider:           ProviderType(strings.ToLower(envOr("DIRECTORY_PROVIDER", string(ProviderAPI)))),
		DirectoryURL:       envOr("DIRECTORY_URL", DefaultDirectoryURL),
		DirectoryCSVPath:   os.Getenv("DIRECTORY_CSV_PATH"),
		DirectoryRateLimit: envFloat("DIRECTORY_RATE_LIMIT", 0),
		GeocoderURL:        envOr("GEOCODER_URL", DefaultGeocoderURL),
		GeocoderRateLimit:  envFloat("GEOCODER_RATE_LIMIT", 0),
		Timeout:            DefaultTimeout,
	}
	if d, err := time.ParseDuration(os.Getenv("UPSTREAM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAPI:
		if c.DirectoryURL == "" {
			return ErrMissingDirectoryURL
		}
	case ProviderCSV:
		if c.DirectoryCSVPath == "" {
			return ErrMissingDirectoryCSV
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return f
}
