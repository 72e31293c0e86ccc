package sectorisation

import (
	"strings"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
)

// LocalityResolver maps a "NAME (DEPARTMENT)" string to its catchment rows.
// Matching is exact once case and whitespace are normalized.
type LocalityResolver struct {
	table *catchment.Table
}

func NewLocalityResolver(table *catchment.Table) LocalityResolver {
	return LocalityResolver{table: table}
}

// Resolve returns the normalized key and its rows. An unknown locality yields
// no rows.
func (l LocalityResolver) Resolve(query string) (string, []catchment.Row) {
	key := catchment.NormalizeName(query)
	if key == "" {
		return "", nil
	}
	return key, l.table.RowsForLocality(key)
}

// Suggest lists locality keys containing query, accents ignored, in sorted
// order. An empty query lists everything up to limit.
func (l LocalityResolver) Suggest(query string, limit int) []string {
	needle := catchment.Fold(query)
	var out []string
	for _, key := range l.table.Localities() {
		if needle != "" && !strings.Contains(catchment.Fold(key), needle) {
			continue
		}
		out = append(out, key)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
