package perimeter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/geocoding"
	"github.com/ThomasAyr/carte-scolaire/internal/mapview"
	"github.com/ThomasAyr/carte-scolaire/internal/provider/annuairecsv"
)

const dump = "Identifiant_de_l_etablissement;Nom_etablissement;Type_etablissement;Statut_public_prive;Adresse_1;Code_postal;Nom_commune;latitude;longitude;etat\n" +
	"0340001A;Collège Jean Moulin;Collège;Public;1 rue de la Paix;34000;Montpellier;43.61;3.87;OUVERT\n" +
	"0340009Z;Collège Sans Secteur;Collège;Public;;34000;Montpellier;;;OUVERT\n"

func ptr[T any](v T) *T { return &v }

func table() *catchment.Table {
	base := catchment.Row{LocalityKey: "MONTPELLIER (HERAULT)", LocalityName: "MONTPELLIER", Department: "HERAULT",
		InseeCode: "34172", PostalCode: "34000", EstablishmentID: "0340001A", EstablishmentType: catchment.College}
	a, b, c := base, base, base
	a.StreetLabel = ptr("Rue de la Loge")
	b.StreetLabel = ptr("Rue de la Loge")
	b.RangeStart = ptr(20)
	c.StreetLabel = ptr("Rue Foch")
	whole := catchment.Row{LocalityKey: "LATTES (HERAULT)", LocalityName: "LATTES", Department: "HERAULT",
		InseeCode: "34129", PostalCode: "34970", EstablishmentID: "0340001A", EstablishmentType: catchment.College}
	return catchment.NewTable([]catchment.Row{a, b, c, whole})
}

func catalog(t *testing.T) *annuairecsv.Directory {
	t.Helper()
	d, err := annuairecsv.Parse(strings.NewReader(dump))
	require.NoError(t, err)
	return d
}

func geocoder(responder httpmock.Responder) (*geocoding.Client, *httpmock.MockTransport) {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodPost, "https://geo.test/search/csv/", responder)
	return geocoding.NewClient("https://geo.test", time.Second, geocoding.WithHTTPClient(&http.Client{Transport: mt})), mt
}

const bulkAnswer = "adresse,city,citycode,postcode,latitude,longitude\n" +
	"Rue de la Loge,MONTPELLIER,34172,34000,43.6109,3.8772\n" +
	"Rue Foch,MONTPELLIER,34172,34000,43.6114,3.8731\n" +
	",LATTES,34129,34970,,\n"

func TestPerimeter(t *testing.T) {
	geo, mt := geocoder(httpmock.NewStringResponder(200, bulkAnswer))
	svc := NewService(table(), catalog(t), geo, zap.NewNop())

	res, err := svc.Perimeter(context.Background(), "0340001a")
	require.NoError(t, err)
	assert.Equal(t, "Collège Jean Moulin", res.Establishment.Name)
	assert.Len(t, res.Addresses, 3)
	assert.Equal(t, 2, res.Located)
	assert.Equal(t, "Résultats de la recherche : 3 adresses/villes trouvées", res.Summary)
	assert.Equal(t, 1, mt.GetTotalCallCount())

	require.Len(t, res.Map.Features.Features, 3)
	assert.Equal(t, mapview.KindEstablishment, res.Map.Features.Features[0].Properties.Kind)
	assert.Equal(t, mapview.ColorAddress, res.Map.Features.Features[1].Properties.Color)
	assert.Equal(t, mapview.PopulatedZoom, res.Map.Zoom)
}

func TestPerimeterErrors(t *testing.T) {
	geo, _ := geocoder(httpmock.NewStringResponder(500, "down"))
	svc := NewService(table(), catalog(t), geo, zap.NewNop())

	_, err := svc.Perimeter(context.Background(), "0340001A")
	assert.ErrorIs(t, err, ErrGeocoding)

	_, err = svc.Perimeter(context.Background(), "0340009Z")
	assert.ErrorIs(t, err, ErrNoCatchmentRows)

	_, err = svc.Perimeter(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownEstablishment)

	_, err = NewService(table(), nil, geo, zap.NewNop()).Perimeter(context.Background(), "0340001A")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.False(t, errors.Is(err, ErrGeocoding))
}

func TestHandlers(t *testing.T) {
	geo, _ := geocoder(httpmock.NewStringResponder(200, bulkAnswer))
	h := SetupRoutes(NewHandler(NewService(table(), catalog(t), geo, zap.NewNop()), zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/establishments?q=moulin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Establishments []Entry `json:"establishments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []Entry{{ID: "0340001A", Label: "Collège Jean Moulin (Montpellier)"}}, list.Establishments)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/0340001A", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/0340009Z", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Données manquantes")
}
