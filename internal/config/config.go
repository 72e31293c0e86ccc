package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

const (
	SourceCSV = "csv"
	SourceDB  = "db"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Catchment table
	CatchmentSource      string
	CatchmentCSVPath     string
	CatchmentDepartments []string
	DatabaseURL          string

	PopulationsPath   string
	EnrichConcurrency int

	// Directory lookup cache
	CacheBackend string
	CacheTTL     time.Duration

	AllowedOrigins []string

	Provider provider.Config
}

// Load reads .env.local and .env when present, then the environment.
// Variables already set win over both files.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "5050"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CatchmentSource:      strings.ToLower(getEnv("CATCHMENT_SOURCE", SourceCSV)),
		CatchmentCSVPath:     getEnv("CATCHMENT_CSV_PATH", "datasets/data_carte_scolaire_nettoye.csv"),
		CatchmentDepartments: splitList(os.Getenv("CATCHMENT_DEPARTMENTS")),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		PopulationsPath:      os.Getenv("POPULATIONS_PATH"),
		EnrichConcurrency:    getEnvAsInt("ENRICH_CONCURRENCY", 1),
		CacheBackend:         strings.ToLower(getEnv("CACHE_BACKEND", CacheNone)),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8501")),
		Provider:             provider.LoadFromEnv(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.CatchmentSource {
	case SourceCSV:
		if c.CatchmentCSVPath == "" {
			return errors.New("CATCHMENT_CSV_PATH is empty")
		}
	case SourceDB:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when CATCHMENT_SOURCE=db")
		}
	default:
		return fmt.Errorf("unknown CATCHMENT_SOURCE %q", c.CatchmentSource)
	}
	switch c.CacheBackend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("ENRICH_CONCURRENCY must be >= 1, got %d", c.EnrichConcurrency)
	}
	return c.Provider.Validate()
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
