package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
)

func ptr[T any](v T) *T { return &v }

func r(locality, dept, id string, typ catchment.EstablishmentType, street *string) catchment.Row {
	return catchment.Row{
		LocalityKey:       catchment.LocalityKey(locality, dept),
		LocalityName:      locality,
		Department:        dept,
		Region:            "OCCITANIE",
		EstablishmentID:   id,
		EstablishmentType: typ,
		StreetLabel:       street,
	}
}

func fixture() *catchment.Table {
	rows := []catchment.Row{
		r("ALBI", "TARN", "C1", catchment.College, nil),
		r("ALBI", "TARN", "L1", catchment.Lycee, nil),
		r("CASTRES", "TARN", "C2", catchment.College, ptr("Rue A")),
		r("CASTRES", "TARN", "C3", catchment.College, ptr("Rue B")),
		r("CASTRES", "TARN", "L1", catchment.Lycee, ptr("Rue A")),
		r("NIMES", "GARD", "C4", catchment.College, nil),
		r("UZES", "GARD", "L2", catchment.Lycee, nil),
	}
	out := r("ANDORRE", "ARIEGE", "C9", catchment.College, nil)
	out.Region = "HORS REGION"
	return catchment.NewTable(append(rows, out))
}

func TestCompute(t *testing.T) {
	rep := Compute(fixture(), Filter{}, DefaultPopulations())

	assert.Equal(t, []string{"ARIEGE", "GARD", "TARN"}, rep.Departments)
	assert.Equal(t, KeyFigures{Establishments: 7, Colleges: 5, Lycees: 2}, rep.KeyFigures)

	require.Len(t, rep.ByDepartment, 3)
	assert.Equal(t, DepartmentCount{Department: "TARN", Establishments: 4, Colleges: 3, Lycees: 1}, rep.ByDepartment[2])

	require.Len(t, rep.PerCapita, 3)
	assert.Equal(t, 387890, rep.PerCapita[2].Population)
	assert.InDelta(t, 4.0/387890*100000, rep.PerCapita[2].Per100k, 1e-9)

	assert.Equal(t, SingleSector{Localities: 5, SingleSector: 4, SingleSectorCollege: 3}, rep.SingleSector)

	require.Len(t, rep.MultiSector, 1)
	assert.Equal(t, "TARN", rep.MultiSector[0].Department)
	assert.Equal(t, []string{"CASTRES"}, rep.MultiSector[0].Localities)

	m := rep.Missing
	assert.Equal(t, 1, m.LocalitiesMissingLycees, "NIMES has no lycée row; ANDORRE is out of region")
	assert.Equal(t, 1, m.LocalitiesMissingColleges, "UZES has no collège row")
	assert.Equal(t, 1, m.AddressesMissingLycees, "CASTRES Rue B")
	assert.Equal(t, 0, m.AddressesMissingColleges)
	require.Len(t, m.ByDepartment.AddressesMissingLycees, 1)
	assert.Equal(t, "Villes: CASTRES", m.ByDepartment.AddressesMissingLycees[0].Summary)
}

func TestComputeFilters(t *testing.T) {
	rep := Compute(fixture(), Filter{Departments: []string{"gard"}, Type: catchment.Lycee}, DefaultPopulations())
	assert.Equal(t, KeyFigures{Establishments: 1, Lycees: 1}, rep.KeyFigures)
	assert.Len(t, rep.Departments, 3, "filter options always list every department")

	empty := Compute(nil, Filter{}, DefaultPopulations())
	assert.Zero(t, empty.KeyFigures)
	assert.Empty(t, empty.MultiSector)
}

func TestFormatLocalities(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	assert.Equal(t, "Villes: A, B, C, D, E, F, G, H, I, J...", FormatLocalities(names))
	assert.Equal(t, "Villes: A, B", FormatLocalities(names[:2]))
}

func TestPopulations(t *testing.T) {
	p := DefaultPopulations()
	n, ok := p.Of("Hérault")
	assert.True(t, ok)
	assert.Equal(t, 1175623, n)
	assert.Len(t, p, 13)

	_, err := ParsePopulations([]byte("departments: {}"))
	assert.Error(t, err)
	_, err = ParsePopulations([]byte("departments:\n  GARD: -1\n"))
	assert.Error(t, err)
}

func TestStatsHandler(t *testing.T) {
	h := SetupRoutes(NewHandler(fixture(), DefaultPopulations(), zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?department=TARN&type=COLLEGE", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rep Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 3, rep.KeyFigures.Colleges)
	assert.Zero(t, rep.KeyFigures.Lycees)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?type=ECOLE", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
