package catchment

import (
	"fmt"
	"strings"
)

// EstablishmentType is the kind of school a catchment row points to.
type EstablishmentType string

const (
	College EstablishmentType = "COLLEGE"
	Lycee   EstablishmentType = "LYCEE"
)

// ParseEstablishmentType accepts the dataset spellings (COLLEGE, Collège, lycée...).
func ParseEstablishmentType(s string) (EstablishmentType, error) {
	switch Fold(s) {
	case "COLLEGE":
		return College, nil
	case "LYCEE":
		return Lycee, nil
	}
	return "", fmt.Errorf("unknown establishment type %q", s)
}

// Label is the French display name used in summaries.
func (t EstablishmentType) Label() string {
	switch t {
	case College:
		return "collège"
	case Lycee:
		return "lycée"
	}
	return strings.ToLower(string(t))
}

// Parity restricts which side of a street a row covers.
type Parity string

const (
	ParityUnspecified Parity = ""
	ParityEven        Parity = "P"
	ParityOdd         Parity = "I"
	ParityBoth        Parity = "PI"
)

func ParseParity(s string) (Parity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NAN":
		return ParityUnspecified, nil
	case "P":
		return ParityEven, nil
	case "I":
		return ParityOdd, nil
	case "PI", "IP":
		return ParityBoth, nil
	}
	return "", fmt.Errorf("unknown parity %q", s)
}

// Row is one catchment assignment. A nil StreetLabel means the row covers the
// whole locality; nil bounds are open ends.
type Row struct {
	LocalityKey       string            `json:"locality_key"`
	LocalityName      string            `json:"locality_name"`
	Department        string            `json:"department"`
	DepartmentCode    string            `json:"department_code,omitempty"`
	Region            string            `json:"region,omitempty"`
	Academy           string            `json:"academy,omitempty"`
	InseeCode         string            `json:"insee_code"`
	PostalCode        string            `json:"postal_code,omitempty"`
	EstablishmentID   string            `json:"establishment_id"`
	EstablishmentType EstablishmentType `json:"establishment_type"`
	StreetLabel       *string           `json:"street_label"`
	StreetSide        string            `json:"street_side,omitempty"`
	RangeStart        *int              `json:"range_start"`
	RangeEnd          *int              `json:"range_end"`
	Parity            Parity            `json:"parity"`
	Line              int               `json:"line"`
}

// Street returns the street label or "" for a whole-locality row.
func (r Row) Street() string {
	if r.StreetLabel == nil {
		return ""
	}
	return *r.StreetLabel
}

func (r Row) HasStreet() bool { return r.StreetLabel != nil }

// Bounded reports whether at least one number bound is set.
func (r Row) Bounded() bool { return r.RangeStart != nil || r.RangeEnd != nil }

// Covers reports whether a civic number falls inside the row. A whole-locality
// row (no street, no bounds) admits every number whatever its parity. An
// unspecified parity only admits numbers when the row carries no bounds.
func (r Row) Covers(number int) bool {
	if !r.HasStreet() && !r.Bounded() {
		return true
	}
	if r.RangeStart != nil && number < *r.RangeStart {
		return false
	}
	if r.RangeEnd != nil && number > *r.RangeEnd {
		return false
	}
	switch r.Parity {
	case ParityBoth:
		return true
	case ParityEven:
		return number%2 == 0
	case ParityOdd:
		return number%2 != 0
	default:
		return !r.Bounded()
	}
}

func (r Row) sameStreet(o Row) bool {
	if r.StreetLabel == nil || o.StreetLabel == nil {
		return r.StreetLabel == nil && o.StreetLabel == nil
	}
	return *r.StreetLabel == *o.StreetLabel
}

func (r Row) parityCompatible(o Row) bool {
	if r.Parity == ParityBoth || o.Parity == ParityBoth {
		return true
	}
	if r.Parity == ParityUnspecified || o.Parity == ParityUnspecified {
		return true
	}
	return r.Parity == o.Parity
}

func (r Row) rangeOverlaps(o Row) bool {
	if r.RangeEnd != nil && o.RangeStart != nil && *r.RangeEnd < *o.RangeStart {
		return false
	}
	if o.RangeEnd != nil && r.RangeStart != nil && *o.RangeEnd < *r.RangeStart {
		return false
	}
	return true
}
