package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

func TestBuildEmpty(t *testing.T) {
	v := Build(nil)
	assert.Equal(t, DefaultCenter, v.Center)
	assert.Equal(t, DefaultZoom, v.Zoom)
	assert.Nil(t, v.Bounds)
	assert.Empty(t, v.Features.Features)
}

func TestBuildCentersOnMean(t *testing.T) {
	v := Build([]Marker{
		{Position: provider.Coordinate{Lat: 43.0, Lon: 3.0}, Kind: KindEstablishment, Color: ColorCollege},
		{Position: provider.Coordinate{Lat: 44.0, Lon: 4.0}, Kind: KindReference, Color: ColorReference, Icon: "home"},
	})
	assert.InDelta(t, 43.5, v.Center.Lat, 1e-9)
	assert.InDelta(t, 3.5, v.Center.Lon, 1e-9)
	assert.Equal(t, PopulatedZoom, v.Zoom)
	require.NotNil(t, v.Bounds)
	assert.Equal(t, [2][2]float64{{43, 3}, {44, 4}}, *v.Bounds)
	require.Len(t, v.Features.Features, 2)
	assert.Equal(t, [2]float64{3.0, 43.0}, v.Features.Features[0].Geometry.Coordinates)
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "red", ColorFor(catchment.Lycee))
	assert.Equal(t, "blue", ColorFor(catchment.College))
	assert.Equal(t, "gray", ColorFor(""))
}
