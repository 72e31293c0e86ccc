package annuaire

import (
	"strings"
	"time"

	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

// Transform maps raw directory records to normalized establishments.
func Transform(source string, recs []Record) []provider.Establishment {
	start := time.Now()
	out := make([]provider.Establishment, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Establishment(source))
	}
	provider.LogTransform(source, len(recs), len(out), time.Since(start))
	return out
}

// Establishment converts one record.
func (r Record) Establishment(source string) provider.Establishment {
	e := provider.Establishment{
		ID:         strings.ToUpper(strings.TrimSpace(r.ID)),
		Name:       strings.TrimSpace(r.Name),
		TypeLabel:  strings.TrimSpace(r.Type),
		Status:     r.Status,
		State:      r.State,
		Address:    strings.TrimSpace(r.Address1),
		PostalCode: string(r.PostalCode),
		Commune:    strings.TrimSpace(r.Commune),
		Phone:      strings.TrimSpace(string(r.Phone)),
		Email:      strings.TrimSpace(r.Email),
		Web:        strings.TrimSpace(r.Web),
		Source:     source,
		Features: provider.Features{
			Catering:             bool(r.Restauration),
			Boarding:             bool(r.Hebergement),
			Inclusion:            bool(r.ULIS),
			Apprenticeship:       bool(r.Apprentissage),
			Segpa:                bool(r.Segpa),
			ArtsSection:          bool(r.Arts),
			CinemaSection:        bool(r.Cinema),
			TheatreSection:       bool(r.Theatre),
			SportSection:         bool(r.Sport),
			InternationalSection: bool(r.International),
			EuropeanSection:      bool(r.European),
			AgriculturalLycee:    bool(r.Agricole),
			MilitaryLycee:        bool(r.Militaire),
			TradesLycee:          bool(r.Metiers),
			PostBac:              bool(r.PostBac),
		},
	}
	if r.Students.Valid && r.Students.Value > 0 {
		n := r.Students.Value
		e.Students = &n
	}
	switch {
	case r.Latitude != nil && r.Longitude != nil:
		e.Position = &provider.Coordinate{Lat: *r.Latitude, Lon: *r.Longitude}
	case r.Position != nil:
		e.Position = &provider.Coordinate{Lat: r.Position.Lat, Lon: r.Position.Lon}
	}
	return e
}
