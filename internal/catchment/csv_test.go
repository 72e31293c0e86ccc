package catchment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "code_departement,libelle_departement_eleve,libelle_region,code_postal,code_insee,com_name_upper,type_et_libelle,no_de_voie_debut,no_de_voie_fin,parite,type_etablissement,code_rne\n"

func TestParseCSV(t *testing.T) {
	in := "\ufeff" + header +
		"34,HERAULT,OCCITANIE,34000.0,34172.0,montpellier,,,,,COLLEGE,0340001a\n" +
		"9,ARIEGE,OCCITANIE,9000,9122,Foix,Rue  des Lilas,1.0,49.0,I,LYCEE,0090002B\n"

	rows, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	a := rows[0]
	assert.Equal(t, "MONTPELLIER (HERAULT)", a.LocalityKey)
	assert.Equal(t, "34172", a.InseeCode)
	assert.Equal(t, "34000", a.PostalCode)
	assert.Equal(t, "0340001A", a.EstablishmentID)
	assert.Equal(t, College, a.EstablishmentType)
	assert.Nil(t, a.StreetLabel)
	assert.Nil(t, a.RangeStart)
	assert.Equal(t, ParityUnspecified, a.Parity)
	assert.Equal(t, 2, a.Line)

	b := rows[1]
	assert.Equal(t, "FOIX (ARIEGE)", b.LocalityKey)
	assert.Equal(t, "09122", b.InseeCode)
	assert.Equal(t, "09", b.DepartmentCode)
	assert.Equal(t, "Rue des Lilas", b.Street())
	require.NotNil(t, b.RangeStart)
	assert.Equal(t, 1, *b.RangeStart)
	assert.Equal(t, 49, *b.RangeEnd)
	assert.Equal(t, ParityOdd, b.Parity)
	assert.Equal(t, Lycee, b.EstablishmentType)
}

func TestParseCSVErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrNoRows)
	})
	t.Run("header only", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(header))
		assert.ErrorIs(t, err, ErrNoRows)
	})
	t.Run("missing column", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("com_name_upper,code_rne\nX,Y\n"))
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
	t.Run("bad type", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(header + "34,HERAULT,,,34172,SETE,,,,,ECOLE,X\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
	t.Run("bad parity", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(header + "34,HERAULT,,,34172,SETE,Rue A,1,3,X,LYCEE,X\n"))
		require.Error(t, err)
	})
	t.Run("non-integral bound", func(t *testing.T) {
		for _, bound := range []string{"12.5", "inf", "NaN", "1e30", "-1e30"} {
			_, err := ParseCSV(strings.NewReader(header + "34,HERAULT,,,34172,SETE,Rue A," + bound + ",30,I,LYCEE,X\n"))
			require.ErrorIs(t, err, ErrBadBound, bound)
			assert.Contains(t, err.Error(), "line 2", bound)
		}
	})
	t.Run("float export of a whole bound", func(t *testing.T) {
		rows, err := ParseCSV(strings.NewReader(header + "34,HERAULT,,,34172,SETE,Rue A,12.0,1e2,I,LYCEE,X\n"))
		require.NoError(t, err)
		assert.Equal(t, 12, *rows[0].RangeStart)
		assert.Equal(t, 100, *rows[0].RangeEnd)
	})
}

func TestRowCovers(t *testing.T) {
	one, fifty := 1, 50
	street := "Rue A"
	tests := []struct {
		name   string
		row    Row
		number int
		want   bool
	}{
		{"whole locality", Row{}, 7, true},
		{"odd in range", Row{RangeStart: &one, RangeEnd: &fifty, Parity: ParityOdd}, 7, true},
		{"odd rejects even", Row{RangeStart: &one, RangeEnd: &fifty, Parity: ParityOdd}, 8, false},
		{"even", Row{RangeStart: &one, RangeEnd: &fifty, Parity: ParityEven}, 8, true},
		{"both", Row{RangeStart: &one, RangeEnd: &fifty, Parity: ParityBoth}, 8, true},
		{"above end", Row{RangeStart: &one, RangeEnd: &fifty, Parity: ParityBoth}, 51, false},
		{"below start", Row{RangeStart: &fifty, Parity: ParityBoth}, 3, false},
		{"open end", Row{RangeStart: &fifty, Parity: ParityBoth}, 5000, true},
		{"unspecified bounded", Row{RangeStart: &one, RangeEnd: &fifty}, 8, false},
		{"whole locality ignores odd parity", Row{Parity: ParityOdd}, 8, true},
		{"whole locality ignores even parity", Row{Parity: ParityEven}, 7, true},
		{"unbounded street keeps its side", Row{StreetLabel: &street, Parity: ParityEven}, 7, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.row.Covers(tc.number))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SÈTE (HÉRAULT)", LocalityKey(" sète ", "Hérault"))
	assert.Equal(t, "SETE", Fold("Sète"))
	assert.Equal(t, "SAINT-JEAN-DE-VÉDAS", NormalizeName("saint-jean-de-védas"))

	name, dept, ok := SplitLocalityKey("SAINT-GILLES (GARD)")
	assert.True(t, ok)
	assert.Equal(t, "SAINT-GILLES", name)
	assert.Equal(t, "GARD", dept)

	_, _, ok = SplitLocalityKey("NOWHERE")
	assert.False(t, ok)
}
