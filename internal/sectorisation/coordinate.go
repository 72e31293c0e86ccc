package sectorisation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/geocoding"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

// Geocoder is the forward geocoding lookup.
type Geocoder interface {
	Search(ctx context.Context, q geocoding.Query) ([]geocoding.Feature, error)
}

// CoordinateResolver finds the reference point shown next to the
// establishments: the street when one was chosen, else the locality.
type CoordinateResolver struct {
	geo Geocoder
	log *zap.Logger
}

func NewCoordinateResolver(geo Geocoder, log *zap.Logger) *CoordinateResolver {
	return &CoordinateResolver{geo: geo, log: log}
}

// Resolve returns nil when the geocoder finds nothing or fails.
func (c *CoordinateResolver) Resolve(ctx context.Context, inseeCode string, street *string, locality string) *provider.Coordinate {
	if c == nil || c.geo == nil {
		return nil
	}

	q := geocoding.Query{Text: locality, Limit: 1}
	if street != nil && *street != "" {
		q = geocoding.Query{Text: *street, Type: "street", CityCode: inseeCode, Limit: 1}
	}

	feats, err := c.geo.Search(ctx, q)
	if err != nil {
		if !errors.Is(err, geocoding.ErrNoResults) {
			c.log.Warn("reference geocoding failed", zap.String("q", q.Text), zap.Error(err))
		}
		return nil
	}
	if len(feats) == 0 {
		return nil
	}
	return &provider.Coordinate{Lat: feats[0].Lat, Lon: feats[0].Lon}
}
