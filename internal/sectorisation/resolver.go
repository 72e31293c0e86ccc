package sectorisation

import (
	"errors"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/metrics"
)

var ErrInvalidNumber = errors.New("civic number must not be negative")

// Query is one address lookup. Street and Number are only consulted when the
// locality's rows need them.
type Query struct {
	Locality string  `json:"locality"`
	Street   *string `json:"street,omitempty"`
	Number   *int    `json:"number,omitempty"`
}

// ResolvedMatch is one establishment assigned to the queried address.
type ResolvedMatch struct {
	EstablishmentID   string                      `json:"establishment_id"`
	EstablishmentType catchment.EstablishmentType `json:"establishment_type"`
}

// Resolution is the outcome of Resolve. Matches holds distinct establishments
// in row order.
type Resolution struct {
	Locality    string          `json:"locality"`
	Status      Status          `json:"status"`
	Streets     []string        `json:"streets,omitempty"`
	Street      *string         `json:"street,omitempty"`
	Bounds      *NumberBounds   `json:"number_bounds,omitempty"`
	Matches     []ResolvedMatch `json:"matches"`
	MultiSector bool            `json:"multi_sector"`
	Rows        []catchment.Row `json:"-"`
}

// OfType returns the matches of one establishment type.
func (r Resolution) OfType(t catchment.EstablishmentType) []ResolvedMatch {
	var out []ResolvedMatch
	for _, m := range r.Matches {
		if m.EstablishmentType == t {
			out = append(out, m)
		}
	}
	return out
}

// Resolver runs the locality lookup and the matcher over one table.
type Resolver struct {
	localities LocalityResolver
}

func NewResolver(table *catchment.Table) *Resolver {
	return &Resolver{localities: NewLocalityResolver(table)}
}

func (r *Resolver) Localities() LocalityResolver { return r.localities }

// Resolve is a pure function of the table and q.
func (r *Resolver) Resolve(q Query) (Resolution, error) {
	if q.Number != nil && *q.Number < 0 {
		return Resolution{}, ErrInvalidNumber
	}

	key, rows := r.localities.Resolve(q.Locality)
	res := Resolution{Locality: key, Matches: []ResolvedMatch{}}
	if key == "" {
		res.Status = StatusNoLocality
		metrics.ResolutionsTotal.WithLabelValues(string(res.Status)).Inc()
		return res, nil
	}

	out := Match(rows, q.Street, q.Number)
	res.Status = out.Status
	res.Streets = out.Streets
	res.Street = out.Street
	res.Bounds = out.Bounds
	res.Rows = out.Rows
	if out.Status == StatusResolved {
		res.Matches = distinctMatches(out.Rows)
		res.MultiSector = len(res.OfType(catchment.College)) > 1 || len(res.OfType(catchment.Lycee)) > 1
	}
	metrics.ResolutionsTotal.WithLabelValues(string(res.Status)).Inc()
	return res, nil
}

func distinctMatches(rows []catchment.Row) []ResolvedMatch {
	seen := map[ResolvedMatch]bool{}
	out := []ResolvedMatch{}
	for _, row := range rows {
		m := ResolvedMatch{EstablishmentID: row.EstablishmentID, EstablishmentType: row.EstablishmentType}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
