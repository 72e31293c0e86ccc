// Package perimeter shows the recruitment area of one establishment: every
// address and locality routed to it, geocoded in bulk.
package perimeter

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/geocoding"
	"github.com/ThomasAyr/carte-scolaire/internal/mapview"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

var (
	ErrCatalogUnavailable   = errors.New("establishment catalog unavailable")
	ErrUnknownEstablishment = errors.New("unknown establishment")
	ErrNoCatchmentRows      = errors.New("no catchment rows for establishment")
	ErrGeocoding            = errors.New("bulk geocoding failed")
)

// Catalog lists the establishments offered in the selector.
type Catalog interface {
	Establishments() []provider.Establishment
	Establishment(id string) (provider.Establishment, bool)
}

type BatchGeocoder interface {
	GeocodeCSV(ctx context.Context, rows []geocoding.AddressRow) ([]geocoding.BatchResult, error)
}

// Entry is one selector option.
type Entry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Result struct {
	Establishment provider.Establishment  `json:"establishment"`
	Addresses     []geocoding.BatchResult `json:"addresses"`
	Located       int                     `json:"located"`
	Summary       string                  `json:"summary"`
	Map           mapview.View            `json:"map"`
}

type Service struct {
	table   *catchment.Table
	catalog Catalog
	geo     BatchGeocoder
	log     *zap.Logger
}

// NewService accepts a nil catalog; every call then fails with
// ErrCatalogUnavailable.
func NewService(table *catchment.Table, catalog Catalog, geo BatchGeocoder, log *zap.Logger) *Service {
	return &Service{table: table, catalog: catalog, geo: geo, log: log}
}

// Establishments filters the catalog by label, accents ignored.
func (s *Service) Establishments(query string, limit int) ([]Entry, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	needle := catchment.Fold(query)
	out := []Entry{}
	for _, e := range s.catalog.Establishments() {
		label := e.Label()
		if needle != "" && !strings.Contains(catchment.Fold(label), needle) {
			continue
		}
		out = append(out, Entry{ID: e.ID, Label: label})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Perimeter geocodes the distinct (street, locality) pairs routed to id.
func (s *Service) Perimeter(ctx context.Context, id string) (*Result, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	est, ok := s.catalog.Establishment(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEstablishment, id)
	}

	rows := s.table.RowsForEstablishment(est.ID)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCatchmentRows, est.ID)
	}

	seen := map[geocoding.AddressRow]bool{}
	var input []geocoding.AddressRow
	for _, r := range rows {
		a := geocoding.AddressRow{Street: r.Street(), City: r.LocalityName, CityCode: r.InseeCode, PostCode: r.PostalCode}
		if seen[a] {
			continue
		}
		seen[a] = true
		input = append(input, a)
	}

	results, err := s.geo.GeocodeCSV(ctx, input)
	if err != nil {
		s.log.Warn("perimeter geocoding failed", zap.String("establishment_id", est.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGeocoding, err)
	}

	out := &Result{Establishment: est, Addresses: results}
	var markers []mapview.Marker
	if est.Position != nil {
		markers = append(markers, mapview.Marker{
			Position:        *est.Position,
			Kind:            mapview.KindEstablishment,
			Color:           mapview.ColorLycee,
			Icon:            "info-sign",
			Tooltip:         est.Name,
			Popup:           fmt.Sprintf("<strong>%s</strong><br>%s", html.EscapeString(est.Name), html.EscapeString(est.Address)),
			EstablishmentID: est.ID,
		})
	}
	for _, r := range results {
		if !r.Found() {
			continue
		}
		out.Located++
		label := fmt.Sprintf("<strong>%s</strong> <br>%s", html.EscapeString(r.Street), html.EscapeString(r.City))
		markers = append(markers, mapview.Marker{
			Position: provider.Coordinate{Lat: *r.Lat, Lon: *r.Lon},
			Kind:     mapview.KindAddress,
			Color:    mapview.ColorAddress,
			Icon:     "info-sign",
			Tooltip:  label,
			Popup:    label,
		})
	}
	out.Summary = fmt.Sprintf("Résultats de la recherche : %d adresses/villes trouvées", len(results))
	out.Map = mapview.Build(markers)
	return out, nil
}
