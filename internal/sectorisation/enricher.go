package sectorisation

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/metrics"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

// Directory is the establishment lookup the enricher depends on.
type Directory interface {
	Lookup(ctx context.Context, establishmentID string) ([]provider.Establishment, error)
}

// LookupResult is the outcome of one directory call. Err is set on failure
// and Records is then empty.
type LookupResult struct {
	EstablishmentID string                   `json:"establishment_id"`
	Records         []provider.Establishment `json:"-"`
	Err             error                    `json:"-"`
}

func (r LookupResult) OK() bool { return r.Err == nil }

// EnrichedEstablishment joins a match with its directory record. Types lists
// every type the establishment was matched as (a cité scolaire is both), in
// match order; ResolvedMatch carries the first.
type EnrichedEstablishment struct {
	ResolvedMatch
	Types     []catchment.EstablishmentType `json:"establishment_types"`
	Directory provider.Establishment        `json:"directory"`
}

// Enrichment is the merged outcome of a batch of lookups.
type Enrichment struct {
	Results        []LookupResult
	Establishments []EnrichedEstablishment
	Total          int
}

// Failures returns the lookups that errored, in input order.
func (e Enrichment) Failures() []LookupResult {
	var out []LookupResult
	for _, r := range e.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

type Enricher struct {
	dir         Directory
	concurrency int
	log         *zap.Logger
}

type EnricherOption func(*Enricher)

// WithConcurrency allows up to n lookups in flight. Values below 2 keep the
// lookups sequential.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) { e.concurrency = n }
}

func NewEnricher(dir Directory, log *zap.Logger, opts ...EnricherOption) *Enricher {
	e := &Enricher{dir: dir, concurrency: 1, log: log}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Enrich looks up every distinct establishment once. A failed lookup is
// recorded in its LookupResult and never aborts the batch.
func (e *Enricher) Enrich(ctx context.Context, matches []ResolvedMatch) Enrichment {
	var order []ResolvedMatch
	types := map[string][]catchment.EstablishmentType{}
	for _, m := range matches {
		known, seen := types[m.EstablishmentID]
		if !seen {
			order = append(order, m)
		}
		if !slices.Contains(known, m.EstablishmentType) {
			types[m.EstablishmentID] = append(known, m.EstablishmentType)
		}
	}

	results := make([]LookupResult, len(order))
	lookup := func(i int) {
		id := order[i].EstablishmentID
		recs, err := e.dir.Lookup(ctx, id)
		if err != nil {
			metrics.EnrichmentFailuresTotal.Inc()
			e.log.Warn("establishment lookup failed", zap.String("establishment_id", id), zap.Error(err))
			results[i] = LookupResult{EstablishmentID: id, Err: err}
			return
		}
		results[i] = LookupResult{EstablishmentID: id, Records: recs}
	}

	if e.concurrency > 1 && len(order) > 1 {
		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for i := range order {
			i := i
			g.Go(func() error {
				lookup(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range order {
			lookup(i)
		}
	}

	out := Enrichment{Results: results}
	dedup := map[string]bool{}
	for i, r := range results {
		for _, rec := range r.Records {
			if rec.ID != "" {
				if dedup[rec.ID] {
					continue
				}
				dedup[rec.ID] = true
			}
			out.Establishments = append(out.Establishments, EnrichedEstablishment{
				ResolvedMatch: order[i],
				Types:         types[order[i].EstablishmentID],
				Directory:     rec,
			})
		}
	}
	out.Total = len(out.Establishments)
	return out
}
