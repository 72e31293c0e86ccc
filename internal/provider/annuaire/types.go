package annuaire

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// recordsResponse is the explore v2.1 records envelope.
type recordsResponse struct {
	TotalCount int      `json:"total_count"`
	Results    []Record `json:"results"`
}

// Record is one row of the fr-en-annuaire-education dataset as returned by
// the records endpoint. Only the fields the app displays are decoded.
type Record struct {
	ID            string      `json:"identifiant_de_l_etablissement"`
	Name          string      `json:"nom_etablissement"`
	Type          string      `json:"type_etablissement"`
	Status        string      `json:"statut_public_prive"`
	State         string      `json:"etat"`
	Address1      string      `json:"adresse_1"`
	PostalCode    FlexString  `json:"code_postal"`
	Commune       string      `json:"nom_commune"`
	Phone         FlexString  `json:"telephone"`
	Email         string      `json:"mail"`
	Web           string      `json:"web"`
	Students      FlexInt     `json:"nombre_d_eleves"`
	Latitude      *float64    `json:"latitude"`
	Longitude     *float64    `json:"longitude"`
	Restauration  Flag        `json:"restauration"`
	Hebergement   Flag        `json:"hebergement"`
	ULIS          Flag        `json:"ulis"`
	Apprentissage Flag        `json:"apprentissage"`
	Segpa         Flag        `json:"segpa"`
	Arts          Flag        `json:"section_arts"`
	Cinema        Flag        `json:"section_cinema"`
	Theatre       Flag        `json:"section_theatre"`
	Sport         Flag        `json:"section_sport"`
	International Flag        `json:"section_internationale"`
	European      Flag        `json:"section_europeenne"`
	Agricole      Flag        `json:"lycee_agricole"`
	Militaire     Flag        `json:"lycee_militaire"`
	Metiers       Flag        `json:"lycee_des_metiers"`
	PostBac       Flag        `json:"post_bac"`
	Position      *GeoPoint2D `json:"position"`
}

// GeoPoint2D is the dataset's geo_point_2d field.
type GeoPoint2D struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Flag decodes the dataset's feature columns, which arrive as 1, "1", true,
// 0, "0", "" or null depending on the export.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	switch strings.ToLower(s) {
	case "1", "true", "oui":
		*f = true
	default:
		*f = false
	}
	return nil
}

// ParseFlag applies the same rules to CSV cells.
func ParseFlag(s string) Flag {
	var f Flag
	_ = f.UnmarshalJSON([]byte(strings.TrimSpace(s)))
	return f
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(strings.TrimSuffix(string(b), ".0"))
	return nil
}

// FlexInt accepts a JSON number, a numeric string or null.
type FlexInt struct {
	Value int
	Valid bool
}

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*n = FlexInt{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = FlexInt{}
		return nil
	}
	*n = FlexInt{Value: int(f), Valid: true}
	return nil
}

// ParseFlexInt applies the same rules to CSV cells.
func ParseFlexInt(s string) FlexInt {
	var n FlexInt
	_ = n.UnmarshalJSON([]byte(s))
	return n
}
