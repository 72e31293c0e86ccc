package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CATCHMENT_SOURCE", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("DIRECTORY_PROVIDER", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5050", cfg.Port)
	assert.Equal(t, SourceCSV, cfg.CatchmentSource)
	assert.Equal(t, "datasets/data_carte_scolaire_nettoye.csv", cfg.CatchmentCSVPath)
	assert.Equal(t, CacheNone, cfg.CacheBackend)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 1, cfg.EnrichConcurrency)
	assert.Equal(t, provider.ProviderAPI, cfg.Provider.Provider)
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CATCHMENT_SOURCE", "DB")
	t.Setenv("DATABASE_URL", "postgres://localhost/carte")
	t.Setenv("CATCHMENT_DEPARTMENTS", "HERAULT, GARD ,")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("ENRICH_CONCURRENCY", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceDB, cfg.CatchmentSource)
	assert.Equal(t, []string{"HERAULT", "GARD"}, cfg.CatchmentDepartments)
	assert.Equal(t, 90*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.EnrichConcurrency)
}

func TestValidate(t *testing.T) {
	base := Config{
		CatchmentSource:   SourceCSV,
		CatchmentCSVPath:  "x.csv",
		CacheBackend:      CacheNone,
		EnrichConcurrency: 1,
		Provider:          provider.Config{Provider: provider.ProviderAPI, DirectoryURL: provider.DefaultDirectoryURL},
	}
	require.NoError(t, base.Validate())

	db := base
	db.CatchmentSource = SourceDB
	assert.Error(t, db.Validate())

	bad := base
	bad.CacheBackend = "memcached"
	assert.Error(t, bad.Validate())

	csvDir := base
	csvDir.Provider.Provider = provider.ProviderCSV
	assert.ErrorIs(t, csvDir.Validate(), provider.ErrMissingDirectoryCSV)
}
