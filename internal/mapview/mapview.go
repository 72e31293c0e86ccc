// Package mapview builds the GeoJSON payload the front end renders with
// Leaflet: markers, a center, a zoom level and the bounds to fit.
package mapview

import (
	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

const (
	DefaultZoom    = 12
	PopulatedZoom  = 11
	ColorLycee     = "red"
	ColorCollege   = "blue"
	ColorOther     = "gray"
	ColorReference = "green"
	ColorAddress   = "lightgray"
)

// DefaultCenter is used when no marker has a position.
var DefaultCenter = provider.Coordinate{Lat: 43.6, Lon: 3.8}

type Kind string

const (
	KindEstablishment Kind = "establishment"
	KindReference     Kind = "reference"
	KindAddress       Kind = "address"
)

// Marker is one point on the map.
type Marker struct {
	Position        provider.Coordinate
	Kind            Kind
	Color           string
	Icon            string
	Tooltip         string
	Popup           string
	EstablishmentID string
}

type View struct {
	Center provider.Coordinate `json:"center"`
	Zoom   int                 `json:"zoom"`
	// Bounds is [[south, west], [north, east]].
	Bounds   *[2][2]float64    `json:"bounds,omitempty"`
	Features FeatureCollection `json:"features"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

type Geometry struct {
	Type string `json:"type"`
	// GeoJSON order: [lon, lat]
	Coordinates [2]float64 `json:"coordinates"`
}

type Properties struct {
	Kind            Kind   `json:"kind"`
	Color           string `json:"color"`
	Icon            string `json:"icon"`
	Tooltip         string `json:"tooltip,omitempty"`
	Popup           string `json:"popup,omitempty"`
	EstablishmentID string `json:"establishment_id,omitempty"`
}

// ColorFor picks the marker color of an establishment type.
func ColorFor(t catchment.EstablishmentType) string {
	switch t {
	case catchment.Lycee:
		return ColorLycee
	case catchment.College:
		return ColorCollege
	}
	return ColorOther
}

// Build centers the view on the mean of all marker positions and fits it to
// their bounding box. With no markers it falls back to DefaultCenter.
func Build(markers []Marker) View {
	v := View{
		Center:   DefaultCenter,
		Zoom:     DefaultZoom,
		Features: FeatureCollection{Type: "FeatureCollection", Features: []Feature{}},
	}
	if len(markers) == 0 {
		return v
	}

	var sumLat, sumLon float64
	b := [2][2]float64{
		{markers[0].Position.Lat, markers[0].Position.Lon},
		{markers[0].Position.Lat, markers[0].Position.Lon},
	}
	for _, m := range markers {
		p := m.Position
		sumLat += p.Lat
		sumLon += p.Lon
		b[0][0] = min(b[0][0], p.Lat)
		b[0][1] = min(b[0][1], p.Lon)
		b[1][0] = max(b[1][0], p.Lat)
		b[1][1] = max(b[1][1], p.Lon)

		v.Features.Features = append(v.Features.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: [2]float64{p.Lon, p.Lat}},
			Properties: Properties{
				Kind:            m.Kind,
				Color:           m.Color,
				Icon:            m.Icon,
				Tooltip:         m.Tooltip,
				Popup:           m.Popup,
				EstablishmentID: m.EstablishmentID,
			},
		})
	}
	n := float64(len(markers))
	v.Center = provider.Coordinate{Lat: sumLat / n, Lon: sumLon / n}
	v.Zoom = PopulatedZoom
	v.Bounds = &b
	return v
}
