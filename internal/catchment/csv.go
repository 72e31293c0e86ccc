package catchment

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	ErrNoRows         = errors.New("catchment csv has no data rows")
	ErrMissingColumn  = errors.New("missing required column")
	ErrBadBound       = errors.New("street number bound is not a whole number")
	requiredColumns   = []string{"com_name_upper", "libelle_departement_eleve", "code_insee", "code_rne", "type_etablissement"}
	fiveDigitColumns  = map[string]bool{"code_insee": true, "code_postal": true}
	departmentColumns = map[string]bool{"code_departement": true}
)

// LoadCSV opens path and parses it with ParseCSV.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ParseCSV(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ParseCSV reads the cleaned catchment export. Rows come back in file order
// with Line set to their 1-based line number (header is line 1).
func ParseCSV(in io.Reader) ([]Row, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}

	var out []Row
	line := 1
	for {
		rec, err := r.Read()
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
			v := strings.TrimSpace(rec[i])
			if v == "" || strings.EqualFold(v, "nan") {
				return ""
			}
			if fiveDigitColumns[name] {
				return padCode(v, 5)
			}
			if departmentColumns[name] {
				return padCode(v, 2)
			}
			return v
		}

		row, err := parseRow(get)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row.Line = line
		out = append(out, row)
	}

	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func parseRow(get func(string) string) (Row, error) {
	name := get("com_name_upper")
	if name == "" {
		return Row{}, errors.New("com_name_upper is required")
	}
	dept := get("libelle_departement_eleve")
	if dept == "" {
		return Row{}, errors.New("libelle_departement_eleve is required")
	}
	id := get("code_rne")
	if id == "" {
		return Row{}, errors.New("code_rne is required")
	}

	typ, err := ParseEstablishmentType(get("type_etablissement"))
	if err != nil {
		return Row{}, err
	}
	parity, err := ParseParity(get("parite"))
	if err != nil {
		return Row{}, err
	}
	start, err := parseBound(get("no_de_voie_debut"))
	if err != nil {
		return Row{}, fmt.Errorf("no_de_voie_debut: %w", err)
	}
	end, err := parseBound(get("no_de_voie_fin"))
	if err != nil {
		return Row{}, fmt.Errorf("no_de_voie_fin: %w", err)
	}

	row := Row{
		LocalityKey:       LocalityKey(name, dept),
		LocalityName:      NormalizeName(name),
		Department:        NormalizeName(dept),
		DepartmentCode:    get("code_departement"),
		Region:            get("libelle_region"),
		Academy:           get("libelle_academie"),
		InseeCode:         get("code_insee"),
		PostalCode:        get("code_postal"),
		EstablishmentID:   strings.ToUpper(id),
		EstablishmentType: typ,
		StreetSide:        get("numero_voie_et_cote"),
		RangeStart:        start,
		RangeEnd:          end,
		Parity:            parity,
	}
	if street := strings.Join(strings.Fields(get("type_et_libelle")), " "); street != "" {
		row.StreetLabel = &street
	}
	return row, nil
}

// parseBound reads an optional street number. Integer columns with blanks
// are exported as floats, so "12.0" is accepted.
func parseBound(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %q", ErrBadBound, s)
	}
	n := int(f)
	return &n, nil
}

// padCode undoes float export and lost leading zeros on INSEE/postal codes
// ("9122.0" -> "09122"). Corsican codes like "2A004" pass through.
func padCode(s string, width int) string {
	s = strings.TrimSuffix(s, ".0")
	for _, c := range s {
		if c < '0' || c > '9' {
			return s
		}
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}
