package catchment

import "sort"

// Table is the immutable, indexed catchment dataset. A nil *Table behaves as
// an empty one.
type Table struct {
	rows            []Row
	byLocality      map[string][]int
	byEstablishment map[string][]int
	localities      []string
}

// Overlap is a pair of rows that can assign the same address to two different
// establishments of the same type.
type Overlap struct {
	LocalityKey string `json:"locality_key"`
	First       Row    `json:"first"`
	Second      Row    `json:"second"`
}

func NewTable(rows []Row) *Table {
	t := &Table{
		rows:            append([]Row(nil), rows...),
		byLocality:      map[string][]int{},
		byEstablishment: map[string][]int{},
	}
	for i, r := range t.rows {
		if _, ok := t.byLocality[r.LocalityKey]; !ok {
			t.localities = append(t.localities, r.LocalityKey)
		}
		t.byLocality[r.LocalityKey] = append(t.byLocality[r.LocalityKey], i)
		t.byEstablishment[r.EstablishmentID] = append(t.byEstablishment[r.EstablishmentID], i)
	}
	sort.Strings(t.localities)
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of every row in load order.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return append([]Row(nil), t.rows...)
}

// Localities returns the sorted distinct locality keys.
func (t *Table) Localities() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.localities...)
}

func (t *Table) HasLocality(key string) bool {
	if t == nil {
		return false
	}
	_, ok := t.byLocality[key]
	return ok
}

// RowsForLocality returns the rows of one locality in load order.
func (t *Table) RowsForLocality(key string) []Row {
	if t == nil {
		return nil
	}
	return t.pick(t.byLocality[key])
}

// RowsForEstablishment returns every row pointing to establishment id.
func (t *Table) RowsForEstablishment(id string) []Row {
	if t == nil {
		return nil
	}
	return t.pick(t.byEstablishment[id])
}

// Establishments returns the distinct establishment ids, sorted.
func (t *Table) Establishments() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.byEstablishment))
	for id := range t.byEstablishment {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Overlaps lists conflicting row pairs, locality by locality.
func (t *Table) Overlaps() []Overlap {
	if t == nil {
		return nil
	}
	var out []Overlap
	for _, key := range t.localities {
		rows := t.RowsForLocality(key)
		for i := 0; i < len(rows); i++ {
			for j := i + 1; j < len(rows); j++ {
				a, b := rows[i], rows[j]
				if a.EstablishmentType != b.EstablishmentType || a.EstablishmentID == b.EstablishmentID {
					continue
				}
				if a.sameStreet(b) && a.parityCompatible(b) && a.rangeOverlaps(b) {
					out = append(out, Overlap{LocalityKey: key, First: a, Second: b})
				}
			}
		}
	}
	return out
}

func (t *Table) pick(idx []int) []Row {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Row, len(idx))
	for i, j := range idx {
		out[i] = t.rows[j]
	}
	return out
}
