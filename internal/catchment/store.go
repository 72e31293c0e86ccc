package catchment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const Schema = "sectorisation"

type CatchmentRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	LocalityKey       string    `gorm:"column:locality_key;index"`
	LocalityName      string    `gorm:"column:com_name_upper"`
	Department        string    `gorm:"column:libelle_departement_eleve;index"`
	DepartmentCode    string    `gorm:"column:code_departement"`
	Region            string    `gorm:"column:libelle_region"`
	Academy           string    `gorm:"column:libelle_academie"`
	InseeCode         string    `gorm:"column:code_insee"`
	PostalCode        string    `gorm:"column:code_postal"`
	EstablishmentID   string    `gorm:"column:code_rne;index"`
	EstablishmentType string    `gorm:"column:type_etablissement"`
	StreetLabel       *string   `gorm:"column:type_et_libelle"`
	StreetSide        string    `gorm:"column:numero_voie_et_cote"`
	RangeStart        *int      `gorm:"column:no_de_voie_debut"`
	RangeEnd          *int      `gorm:"column:no_de_voie_fin"`
	Parity            string    `gorm:"column:parite"`
	SourceLine        int       `gorm:"column:source_line"`
}

func (CatchmentRecord) TableName() string { return Schema + ".catchment_rows" }

// recordColumns is the column order used by the COPY importer.
var recordColumns = []string{
	"id", "locality_key", "com_name_upper", "libelle_departement_eleve", "code_departement",
	"libelle_region", "libelle_academie", "code_insee", "code_postal", "code_rne",
	"type_etablissement", "type_et_libelle", "numero_voie_et_cote", "no_de_voie_debut",
	"no_de_voie_fin", "parite", "source_line",
}

func NewRecord(ns uuid.UUID, r Row) CatchmentRecord {
	return CatchmentRecord{
		ID:                RowID(ns, r),
		LocalityKey:       r.LocalityKey,
		LocalityName:      r.LocalityName,
		Department:        r.Department,
		DepartmentCode:    r.DepartmentCode,
		Region:            r.Region,
		Academy:           r.Academy,
		InseeCode:         r.InseeCode,
		PostalCode:        r.PostalCode,
		EstablishmentID:   r.EstablishmentID,
		EstablishmentType: string(r.EstablishmentType),
		StreetLabel:       r.StreetLabel,
		StreetSide:        r.StreetSide,
		RangeStart:        r.RangeStart,
		RangeEnd:          r.RangeEnd,
		Parity:            string(r.Parity),
		SourceLine:        r.Line,
	}
}

func (c CatchmentRecord) values() []any {
	return []any{
		[16]byte(c.ID), c.LocalityKey, c.LocalityName, c.Department, c.DepartmentCode,
		c.Region, c.Academy, c.InseeCode, c.PostalCode, c.EstablishmentID,
		c.EstablishmentType, c.StreetLabel, c.StreetSide, c.RangeStart,
		c.RangeEnd, c.Parity, c.SourceLine,
	}
}

// Row converts a stored record back to a catchment row.
func (c CatchmentRecord) Row() (Row, error) {
	typ, err := ParseEstablishmentType(c.EstablishmentType)
	if err != nil {
		return Row{}, err
	}
	parity, err := ParseParity(c.Parity)
	if err != nil {
		return Row{}, err
	}
	return Row{
		LocalityKey:       c.LocalityKey,
		LocalityName:      c.LocalityName,
		Department:        c.Department,
		DepartmentCode:    c.DepartmentCode,
		Region:            c.Region,
		Academy:           c.Academy,
		InseeCode:         c.InseeCode,
		PostalCode:        c.PostalCode,
		EstablishmentID:   c.EstablishmentID,
		EstablishmentType: typ,
		StreetLabel:       c.StreetLabel,
		StreetSide:        c.StreetSide,
		RangeStart:        c.RangeStart,
		RangeEnd:          c.RangeEnd,
		Parity:            parity,
		Line:              c.SourceLine,
	}, nil
}

// Store reads and writes catchment rows through gorm.
type Store struct {
	db    *gorm.DB
	table string
}

// NewStore binds a store to db. SQLite has no schemas, so the table lives
// unqualified there.
func NewStore(db *gorm.DB) *Store {
	table := CatchmentRecord{}.TableName()
	if db.Dialector.Name() == "sqlite" {
		table = "catchment_rows"
	}
	return &Store{db: db, table: table}
}

func (s *Store) tx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.tx(ctx).AutoMigrate(&CatchmentRecord{})
}

// Save inserts rows in batches. Import is the faster path on postgres.
func (s *Store) Save(ctx context.Context, ns uuid.UUID, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	recs := make([]CatchmentRecord, len(rows))
	for i, r := range rows {
		recs[i] = NewRecord(ns, r)
	}
	return s.tx(ctx).CreateInBatches(&recs, 500).Error
}

// Load reads the stored rows, optionally restricted to some departments, and
// indexes them.
func (s *Store) Load(ctx context.Context, departments []string) (*Table, error) {
	q := s.tx(ctx).Order("source_line")
	if len(departments) > 0 {
		norm := make([]string, len(departments))
		for i, d := range departments {
			norm[i] = NormalizeName(d)
		}
		if s.db.Dialector.Name() == "postgres" {
			q = q.Where("libelle_departement_eleve = ANY(?)", pq.Array(norm))
		} else {
			q = q.Where("libelle_departement_eleve IN ?", norm)
		}
	}

	var recs []CatchmentRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("load catchment rows: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrNoRows
	}

	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		r, err := rec.Row()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		rows = append(rows, r)
	}
	return NewTable(rows), nil
}
