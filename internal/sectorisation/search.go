package sectorisation

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/mapview"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

// SearchResult is everything the search page renders for one query.
type SearchResult struct {
	ID uuid.UUID `json:"search_id"`
	Resolution
	Summary        string               `json:"summary"`
	Colleges       int                  `json:"college_count"`
	Lycees         int                  `json:"lycee_count"`
	Total          int                  `json:"total"`
	Establishments []Card               `json:"establishments"`
	Notices        []string             `json:"notices,omitempty"`
	Reference      *provider.Coordinate `json:"reference,omitempty"`
	Map            *mapview.View        `json:"map,omitempty"`
	Timings        Timings              `json:"-"`
}

// Timings records how long each stage of a search took.
type Timings struct {
	Resolve time.Duration
	Enrich  time.Duration
	Geocode time.Duration
}

// Service runs the full search: resolve, enrich, locate, lay out the map.
type Service struct {
	resolver *Resolver
	enricher *Enricher
	coords   *CoordinateResolver
	log      *zap.Logger
}

func NewService(table *catchment.Table, dir Directory, geo Geocoder, log *zap.Logger, opts ...EnricherOption) *Service {
	return &Service{
		resolver: NewResolver(table),
		enricher: NewEnricher(dir, log, opts...),
		coords:   NewCoordinateResolver(geo, log),
		log:      log,
	}
}

func (s *Service) Resolver() *Resolver { return s.resolver }

// Search only returns an error for invalid input. Upstream failures become
// notices or a missing reference point.
func (s *Service) Search(ctx context.Context, q Query) (*SearchResult, error) {
	start := time.Now()
	res, err := s.resolver.Resolve(q)
	if err != nil {
		return nil, err
	}

	out := &SearchResult{
		ID:             uuid.New(),
		Resolution:     res,
		Establishments: []Card{},
	}
	out.Timings.Resolve = time.Since(start)
	out.Colleges = len(res.OfType(catchment.College))
	out.Lycees = len(res.OfType(catchment.Lycee))
	out.Summary = summary(res.Status, out.Colleges, out.Lycees)

	s.log.Debug("resolved address",
		zap.String("search_id", out.ID.String()),
		zap.String("locality", res.Locality),
		zap.String("status", string(res.Status)),
		zap.Int("matches", len(res.Matches)))

	if res.Status != StatusResolved {
		return out, nil
	}

	start = time.Now()
	enr := s.enricher.Enrich(ctx, res.Matches)
	out.Timings.Enrich = time.Since(start)
	out.Total = enr.Total
	for _, f := range enr.Failures() {
		out.Notices = append(out.Notices, "Erreur lors de la récupération des données pour "+f.EstablishmentID)
	}
	for _, e := range enr.Establishments {
		out.Establishments = append(out.Establishments, NewCard(e))
	}

	row := res.Rows[0]
	start = time.Now()
	out.Reference = s.coords.Resolve(ctx, row.InseeCode, res.Street, row.LocalityName)
	out.Timings.Geocode = time.Since(start)

	view := mapview.Build(markers(enr.Establishments, out.Reference, row.LocalityName, res.Street))
	out.Map = &view
	return out, nil
}

func markers(ests []EnrichedEstablishment, ref *provider.Coordinate, locality string, street *string) []mapview.Marker {
	var out []mapview.Marker
	for _, e := range ests {
		if e.Directory.Position == nil {
			continue
		}
		out = append(out, mapview.Marker{
			Position:        *e.Directory.Position,
			Kind:            mapview.KindEstablishment,
			Color:           mapview.ColorFor(e.EstablishmentType),
			Icon:            "info-sign",
			Tooltip:         e.Directory.Name,
			Popup:           fmt.Sprintf("<strong>%s</strong><br>%s", html.EscapeString(e.Directory.Name), html.EscapeString(e.Directory.Address)),
			EstablishmentID: e.EstablishmentID,
		})
	}
	if ref != nil {
		tooltip, label := locality, ""
		if street != nil {
			tooltip, label = *street, *street
		}
		out = append(out, mapview.Marker{
			Position: *ref,
			Kind:     mapview.KindReference,
			Color:    mapview.ColorReference,
			Icon:     "home",
			Tooltip:  tooltip,
			Popup:    fmt.Sprintf("<strong>%s</strong><br>%s", html.EscapeString(locality), html.EscapeString(label)),
		})
	}
	return out
}

// summary builds the French headline, e.g. "1 collège et 2 lycées trouvés".
func summary(status Status, colleges, lycees int) string {
	switch status {
	case StatusNoLocality:
		return "Sélectionnez une ville"
	case StatusStreetRequired:
		return "Plusieurs voies existent pour cette ville : choisissez une voie"
	case StatusNumberRequired:
		return "Le secteur dépend du numéro : saisissez un numéro de voie"
	case StatusNotFound:
		return "Aucun établissement trouvé avec ces critères"
	}

	plural := func(n int, word string) string {
		if n > 1 {
			return fmt.Sprintf("%d %ss", n, word)
		}
		return fmt.Sprintf("%d %s", n, word)
	}
	var parts []string
	if colleges > 0 {
		parts = append(parts, plural(colleges, catchment.College.Label()))
	}
	if lycees > 0 {
		parts = append(parts, plural(lycees, catchment.Lycee.Label()))
	}
	verb := "trouvé"
	if colleges+lycees > 1 {
		verb = "trouvés"
	}
	return strings.Join(parts, " et ") + " " + verb
}
