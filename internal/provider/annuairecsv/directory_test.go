package annuairecsv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = "Identifiant_de_l_etablissement;Nom_etablissement;Type_etablissement;Statut_public_prive;Adresse_1;Code_postal;Nom_commune;Telephone;Mail;Web;Restauration;Hebergement;ULIS;Nombre_d_eleves;latitude;longitude;etat\n" +
	"0340001A;Collège Jean Moulin;Collège;Public;1 rue de la Paix;34000;Montpellier;0467000000;ce.0340001a@ac.fr;;1;0;1;612;43.61;3.87;OUVERT\n" +
	"0340002B;Lycée professionnel Mermoz;Lycée;Public;2 av X;34000;Montpellier;;;;0;0;0;;;;OUVERT\n" +
	"0340003C;Lycée Joffre;Lycée;Public;150 allée de la Citadelle;34060;Montpellier;;;;1;1;0;2100;43.61;3.88;OUVERT\n" +
	"0340004D;Collège Privé Saint-Roch;Collège;Privé;;34000;Montpellier;;;;0;0;0;;;;OUVERT\n" +
	"0340005E;Collège Fermé;Collège;Public;;34000;Montpellier;;;;0;0;0;;;;FERME\n" +
	"0300001F;Cité scolaire Albert Camus;Lycée;Public;;30000;Nîmes;;;;0;0;0;;;;OUVERT\n"

func TestParse(t *testing.T) {
	d, err := Parse(strings.NewReader(dump))
	require.NoError(t, err)

	cat := d.Establishments()
	require.Len(t, cat, 2)
	assert.Equal(t, "Collège Jean Moulin (Montpellier)", cat[0].Label())
	assert.Equal(t, "Lycée Joffre (Montpellier)", cat[1].Label())

	e, ok := d.Establishment("0340001a")
	require.True(t, ok)
	assert.True(t, e.Features.Catering)
	assert.False(t, e.Features.Boarding)
	assert.True(t, e.Features.Inclusion)
	require.NotNil(t, e.Students)
	assert.Equal(t, 612, *e.Students)
	require.NotNil(t, e.Position)

	_, ok = d.Establishment("0340004D")
	assert.False(t, ok, "private schools are not in the catalog")

	recs, err := d.Lookup(context.Background(), "0340004D")
	require.NoError(t, err)
	assert.Len(t, recs, 1, "lookups see the whole dump")

	recs, err = d.Lookup(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, d.HealthCheck(context.Background()))
}

func TestParseMissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Nom_etablissement;Nom_commune\nX;Y\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identifiant_de_l_etablissement")
}
