package sectorisation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

type fakeDirectory struct {
	mu    sync.Mutex
	calls map[string]int
	recs  map[string][]provider.Establishment
	fail  map[string]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{calls: map[string]int{}, recs: map[string][]provider.Establishment{}, fail: map[string]bool{}}
}

func (d *fakeDirectory) add(id, name string, pos *provider.Coordinate) {
	d.recs[id] = append(d.recs[id], provider.Establishment{ID: id, Name: name, TypeLabel: "Collège", Position: pos})
}

func (d *fakeDirectory) Lookup(_ context.Context, id string) ([]provider.Establishment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[id]++
	if d.fail[id] {
		return nil, errors.New("directory unavailable")
	}
	return d.recs[id], nil
}

func matches(ids ...string) []ResolvedMatch {
	out := make([]ResolvedMatch, len(ids))
	for i, id := range ids {
		out[i] = ResolvedMatch{EstablishmentID: id, EstablishmentType: catchment.College}
	}
	return out
}

func TestEnrichDeduplicatesLookups(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("E1", "Collège Un", nil)

	enr := NewEnricher(dir, zap.NewNop()).Enrich(context.Background(), matches("E1", "E1", "E1"))

	assert.Equal(t, 1, dir.calls["E1"])
	require.Len(t, enr.Establishments, 1)
	assert.Equal(t, "Collège Un", enr.Establishments[0].Directory.Name)
	assert.Equal(t, 1, enr.Total)
	assert.Empty(t, enr.Failures())
}

func TestEnrichToleratesFailures(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("E2", "Collège Deux", nil)
	dir.add("E3", "Collège Trois", nil)
	dir.fail["E1"] = true

	enr := NewEnricher(dir, zap.NewNop()).Enrich(context.Background(), matches("E1", "E2", "E3"))

	require.Len(t, enr.Results, 3)
	assert.False(t, enr.Results[0].OK())
	assert.True(t, enr.Results[1].OK())
	require.Len(t, enr.Failures(), 1)
	assert.Equal(t, "E1", enr.Failures()[0].EstablishmentID)
	require.Len(t, enr.Establishments, 2)
	assert.Equal(t, "E2", enr.Establishments[0].EstablishmentID)
	assert.Equal(t, "E3", enr.Establishments[1].EstablishmentID)
}

func TestEnrichMissingRecordIsNotAFailure(t *testing.T) {
	dir := newFakeDirectory()
	enr := NewEnricher(dir, zap.NewNop()).Enrich(context.Background(), matches("GHOST"))
	assert.Empty(t, enr.Failures())
	assert.Empty(t, enr.Establishments)
	assert.Zero(t, enr.Total)
}

func TestEnrichConcurrentKeepsOrder(t *testing.T) {
	dir := newFakeDirectory()
	ids := []string{"A", "B", "C", "D", "E", "F"}
	for _, id := range ids {
		dir.add(id, "Collège "+id, nil)
	}
	dir.fail["C"] = true

	enr := NewEnricher(dir, zap.NewNop(), WithConcurrency(4)).Enrich(context.Background(), matches(append(ids, "A", "B")...))

	var got []string
	for _, e := range enr.Establishments {
		got = append(got, e.EstablishmentID)
	}
	assert.Equal(t, []string{"A", "B", "D", "E", "F"}, got)
	for _, id := range ids {
		assert.Equal(t, 1, dir.calls[id], id)
	}
}

func TestEnrichDeduplicatesRecordsAcrossIDs(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("OLD", "Lycée Joffre", nil)
	dir.recs["OLD"][0].ID = "0340003C"
	dir.add("0340003C", "Lycée Joffre", nil)

	enr := NewEnricher(dir, zap.NewNop()).Enrich(context.Background(), matches("OLD", "0340003C"))
	assert.Len(t, enr.Establishments, 1)
}

func TestEnrichKeepsEveryTypeOfAnID(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("CITE", "Cité scolaire", nil)
	dir.add("E2", "Collège Deux", nil)

	enr := NewEnricher(dir, zap.NewNop()).Enrich(context.Background(), []ResolvedMatch{
		{EstablishmentID: "CITE", EstablishmentType: catchment.College},
		{EstablishmentID: "E2", EstablishmentType: catchment.College},
		{EstablishmentID: "CITE", EstablishmentType: catchment.Lycee},
		{EstablishmentID: "CITE", EstablishmentType: catchment.College},
	})

	assert.Equal(t, 1, dir.calls["CITE"])
	require.Len(t, enr.Establishments, 2)
	assert.Equal(t, []catchment.EstablishmentType{catchment.College, catchment.Lycee}, enr.Establishments[0].Types)
	assert.Equal(t, []catchment.EstablishmentType{catchment.College}, enr.Establishments[1].Types)

	card := NewCard(enr.Establishments[0])
	assert.Equal(t, catchment.College, card.EstablishmentType)
	assert.Equal(t, []catchment.EstablishmentType{catchment.College, catchment.Lycee}, card.Types)
}
