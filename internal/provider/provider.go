package provider

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrMissingDirectoryCSV = errors.New("DIRECTORY_CSV_PATH is required for the csv directory provider")
	ErrMissingDirectoryURL = errors.New("DIRECTORY_URL is required for the api directory provider")
	ErrUnknownProvider     = errors.New("unknown provider type")
)

// Directory is implemented by every establishment directory source: the
// open-data API and the annuaire CSV dump.
type Directory interface {
	// Name returns the provider name for logging purposes.
	Name() string

	// Lookup returns every directory record for one establishment id. An
	// unknown id yields an empty slice, not an error.
	Lookup(ctx context.Context, establishmentID string) ([]Establishment, error)

	// HealthCheck verifies the provider can reach its data source.
	HealthCheck(ctx context.Context) error
}

var providerRegistry = make(map[ProviderType]func(Config) (Directory, error))

// RegisterProvider registers a provider constructor for a given provider type.
// This should be called from init() in each provider package.
func RegisterProvider(providerType ProviderType, constructor func(Config) (Directory, error)) {
	providerRegistry[providerType] = constructor
}

// NewDirectory creates the Directory selected by cfg.
func NewDirectory(cfg Config) (Directory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	constructor, ok := providerRegistry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	return constructor(cfg)
}
