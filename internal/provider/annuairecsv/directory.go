// Package annuairecsv serves directory lookups and the perimeter catalog from
// the fr-en-annuaire-education CSV dump (semicolon separated).
package annuairecsv

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ThomasAyr/carte-scolaire/internal/provider"
	"github.com/ThomasAyr/carte-scolaire/internal/provider/annuaire"
)

const name = "annuaire-csv"

var requiredColumns = []string{"identifiant_de_l_etablissement", "nom_etablissement", "type_etablissement", "nom_commune"}

// Directory is an in-memory index over the dump. All rows are searchable by
// id; the catalog only holds open public collèges and general lycées.
type Directory struct {
	byID    map[string][]provider.Establishment
	catalog []provider.Establishment
}

var _ provider.Directory = (*Directory)(nil)

func init() {
	provider.RegisterProvider(provider.ProviderCSV, func(cfg provider.Config) (provider.Directory, error) {
		return Load(cfg.DirectoryCSVPath)
	})
}

// Load opens and parses the dump at path.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse reads the dump from r.
func Parse(r io.Reader) (*Directory, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("annuaire csv is empty")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	d := &Directory{byID: map[string][]provider.Establishment{}}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		e := toEstablishment(get)
		if e.ID == "" {
			continue
		}
		d.byID[e.ID] = append(d.byID[e.ID], e)
		if inCatalog(e) {
			d.catalog = append(d.catalog, e)
		}
	}

	sort.SliceStable(d.catalog, func(i, j int) bool { return d.catalog[i].Label() < d.catalog[j].Label() })
	return d, nil
}

func toEstablishment(get func(string) string) provider.Establishment {
	students := annuaire.ParseFlexInt(get("nombre_d_eleves"))
	e := provider.Establishment{
		ID:         strings.ToUpper(get("identifiant_de_l_etablissement")),
		Name:       get("nom_etablissement"),
		TypeLabel:  get("type_etablissement"),
		Status:     get("statut_public_prive"),
		State:      get("etat"),
		Address:    get("adresse_1"),
		PostalCode: strings.TrimSuffix(get("code_postal"), ".0"),
		Commune:    get("nom_commune"),
		Phone:      get("telephone"),
		Email:      get("mail"),
		Web:        get("web"),
		Source:     name,
		Features: provider.Features{
			Catering:             flag(get("restauration")),
			Boarding:             flag(get("hebergement")),
			Inclusion:            flag(get("ulis")),
			Apprenticeship:       flag(get("apprentissage")),
			Segpa:                flag(get("segpa")),
			ArtsSection:          flag(get("section_arts")),
			CinemaSection:        flag(get("section_cinema")),
			TheatreSection:       flag(get("section_theatre")),
			SportSection:         flag(get("section_sport")),
			InternationalSection: flag(get("section_internationale")),
			EuropeanSection:      flag(get("section_europeenne")),
			AgriculturalLycee:    flag(get("lycee_agricole")),
			MilitaryLycee:        flag(get("lycee_militaire")),
			TradesLycee:          flag(get("lycee_des_metiers")),
			PostBac:              flag(get("post_bac")),
		},
	}
	if students.Valid && students.Value > 0 {
		n := students.Value
		e.Students = &n
	}
	lat, errLat := strconv.ParseFloat(get("latitude"), 64)
	lon, errLon := strconv.ParseFloat(get("longitude"), 64)
	if errLat == nil && errLon == nil {
		e.Position = &provider.Coordinate{Lat: lat, Lon: lon}
	}
	return e
}

func flag(s string) bool { return bool(annuaire.ParseFlag(s)) }

// inCatalog keeps open public collèges and lycées, minus vocational lycées
// and cités scolaires.
func inCatalog(e provider.Establishment) bool {
	if e.TypeLabel != "Lycée" && e.TypeLabel != "Collège" {
		return false
	}
	if e.Status != "Public" || e.State != "OUVERT" {
		return false
	}
	lower := strings.ToLower(e.Name)
	return !strings.Contains(lower, "professionnel") && !strings.Contains(lower, "cité scolaire")
}

func (d *Directory) Name() string { return name }

func (d *Directory) HealthCheck(context.Context) error {
	if len(d.byID) == 0 {
		return errors.New("annuaire csv holds no establishments")
	}
	return nil
}

func (d *Directory) Lookup(_ context.Context, establishmentID string) ([]provider.Establishment, error) {
	recs := d.byID[strings.ToUpper(strings.TrimSpace(establishmentID))]
	return append([]provider.Establishment(nil), recs...), nil
}

// Establishments returns the catalog sorted by label.
func (d *Directory) Establishments() []provider.Establishment {
	return append([]provider.Establishment(nil), d.catalog...)
}

// Establishment returns the catalog entry for id.
func (d *Directory) Establishment(id string) (provider.Establishment, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, e := range d.catalog {
		if e.ID == id {
			return e, true
		}
	}
	return provider.Establishment{}, false
}
