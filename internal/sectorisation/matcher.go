package sectorisation

import (
	"sort"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
)

// Status is where a resolution stopped.
type Status string

const (
	StatusNoLocality     Status = "no_locality"
	StatusNotFound       Status = "not_found"
	StatusStreetRequired Status = "street_required"
	StatusNumberRequired Status = "number_required"
	StatusResolved       Status = "resolved"
)

// NumberBounds is the span of civic numbers covered by the candidate rows,
// offered as a hint when a number is required.
type NumberBounds struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// Outcome is the matcher's verdict for one locality.
type Outcome struct {
	Status  Status
	Streets []string
	Street  *string
	Bounds  *NumberBounds
	Rows    []catchment.Row
}

// Match narrows a locality's rows to those covering the queried address.
//
// A street is only asked for when the locality has several distinct street
// labels; a number only when the remaining rows disagree on their range or
// parity. A supplied number always filters, whether it was needed or not.
func Match(rows []catchment.Row, street *string, number *int) Outcome {
	if len(rows) == 0 {
		return Outcome{Status: StatusNotFound}
	}

	var out Outcome
	if streets := distinctStreets(rows); len(streets) > 1 {
		out.Streets = streets
		if street == nil {
			out.Status = StatusStreetRequired
			return out
		}
		var kept []catchment.Row
		for _, r := range rows {
			if r.StreetLabel != nil && *r.StreetLabel == *street {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			out.Status = StatusNotFound
			return out
		}
		s := *street
		out.Street = &s
		rows = kept
	}

	if number == nil {
		if needsNumber(rows) {
			out.Status = StatusNumberRequired
			out.Bounds = bounds(rows)
			return out
		}
		out.Status = StatusResolved
		out.Rows = rows
		return out
	}

	var kept []catchment.Row
	for _, r := range rows {
		if r.Covers(*number) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		out.Status = StatusNotFound
		return out
	}
	out.Status = StatusResolved
	out.Rows = kept
	return out
}

func distinctStreets(rows []catchment.Row) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		if r.StreetLabel == nil || seen[*r.StreetLabel] {
			continue
		}
		seen[*r.StreetLabel] = true
		out = append(out, *r.StreetLabel)
	}
	sort.Strings(out)
	return out
}

type rangeKey struct {
	start, end int
	hasStart   bool
	hasEnd     bool
}

func keyOf(r catchment.Row) rangeKey {
	k := rangeKey{}
	if r.RangeStart != nil {
		k.start, k.hasStart = *r.RangeStart, true
	}
	if r.RangeEnd != nil {
		k.end, k.hasEnd = *r.RangeEnd, true
	}
	return k
}

// needsNumber reports whether the bounded rows split the street: more than
// one distinct range, or one range shared by rows of different parity.
func needsNumber(rows []catchment.Row) bool {
	ranges := map[rangeKey]bool{}
	sides := map[rangeKey]map[catchment.Parity]bool{}
	for _, r := range rows {
		if !r.Bounded() {
			continue
		}
		k := keyOf(r)
		ranges[k] = true
		if sides[k] == nil {
			sides[k] = map[catchment.Parity]bool{}
		}
		sides[k][r.Parity] = true
	}
	if len(ranges) > 1 {
		return true
	}
	for _, p := range sides {
		if len(p) > 1 {
			return true
		}
	}
	return false
}

func bounds(rows []catchment.Row) *NumberBounds {
	b := &NumberBounds{}
	for _, r := range rows {
		if r.RangeStart != nil && (b.Min == nil || *r.RangeStart < *b.Min) {
			v := *r.RangeStart
			b.Min = &v
		}
		if r.RangeEnd != nil && (b.Max == nil || *r.RangeEnd > *b.Max) {
			v := *r.RangeEnd
			b.Max = &v
		}
	}
	return b
}
