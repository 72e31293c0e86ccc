package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasAyr/carte-scolaire/internal/cache"
)

type countingDirectory struct {
	calls int
	recs  map[string][]Establishment
	err   error
}

func (d *countingDirectory) Name() string                      { return "fake" }
func (d *countingDirectory) HealthCheck(context.Context) error { return nil }
func (d *countingDirectory) Lookup(_ context.Context, id string) ([]Establishment, error) {
	d.calls++
	return d.recs[id], d.err
}

func TestCachedDirectory(t *testing.T) {
	ctx := context.Background()
	next := &countingDirectory{recs: map[string][]Establishment{
		"0340001A": {{ID: "0340001A", Name: "Collège Jean Moulin"}},
	}}
	dir := NewCachedDirectory(next, cache.NewMemoryStore(time.Minute), time.Minute)

	for i := 0; i < 3; i++ {
		recs, err := dir.Lookup(ctx, "0340001A")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Collège Jean Moulin", recs[0].Name)
	}
	assert.Equal(t, 1, next.calls)

	// empty answers are not cached
	_, _ = dir.Lookup(ctx, "UNKNOWN")
	_, _ = dir.Lookup(ctx, "UNKNOWN")
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, "fake+memory", dir.Name())
}

func TestCachedDirectoryDoesNotCacheErrors(t *testing.T) {
	next := &countingDirectory{err: errors.New("boom")}
	dir := NewCachedDirectory(next, cache.NewMemoryStore(time.Minute), time.Minute)

	_, err := dir.Lookup(context.Background(), "X")
	require.Error(t, err)
	_, err = dir.Lookup(context.Background(), "X")
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Provider: ProviderAPI, DirectoryURL: DefaultDirectoryURL}.Validate())
	assert.ErrorIs(t, Config{Provider: ProviderAPI}.Validate(), ErrMissingDirectoryURL)
	assert.ErrorIs(t, Config{Provider: ProviderCSV}.Validate(), ErrMissingDirectoryCSV)

	_, err := NewDirectory(Config{Provider: "ldap"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DIRECTORY_PROVIDER", "CSV")
	t.Setenv("DIRECTORY_CSV_PATH", "datasets/fr-en-annuaire-education.csv")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("GEOCODER_RATE_LIMIT", "40")

	cfg := LoadFromEnv()
	assert.Equal(t, ProviderCSV, cfg.Provider)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 40.0, cfg.GeocoderRateLimit)
	assert.Equal(t, DefaultGeocoderURL, cfg.GeocoderURL)
	assert.NoError(t, cfg.Validate())
}
