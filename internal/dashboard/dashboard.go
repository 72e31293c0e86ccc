// Package dashboard computes the coverage statistics of the catchment table.
// It only reads the table and never shares filtered state with searches.
package dashboard

import (
	"sort"
	"strings"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
)

// OutOfRegion marks rows routing pupils to establishments outside the region.
const OutOfRegion = "HORS REGION"

const listedLocalities = 10

// Filter restricts the rows a report covers. Empty fields mean "all".
type Filter struct {
	Departments []string                    `json:"departments"`
	Type        catchment.EstablishmentType `json:"type,omitempty"`
}

type KeyFigures struct {
	Establishments int `json:"establishments"`
	Colleges       int `json:"colleges"`
	Lycees         int `json:"lycees"`
}

type DepartmentCount struct {
	Department     string `json:"department"`
	Establishments int    `json:"establishments"`
	Colleges       int    `json:"colleges"`
	Lycees         int    `json:"lycees"`
}

type DepartmentRatio struct {
	Department     string  `json:"department"`
	Establishments int     `json:"establishments"`
	Population     int     `json:"population"`
	Per100k        float64 `json:"per_100k"`
}

// SingleSector counts localities assigned as a whole, with no street rules.
type SingleSector struct {
	Localities          int `json:"localities"`
	SingleSector        int `json:"single_sector"`
	SingleSectorCollege int `json:"single_sector_college"`
}

// DepartmentLocalities lists localities of one department, with a display
// summary capped to the first ten names.
type DepartmentLocalities struct {
	Department string   `json:"department"`
	Count      int      `json:"count"`
	Localities []string `json:"localities"`
	Summary    string   `json:"summary"`
}

// Missing compares the collège and lycée maps.
type Missing struct {
	LocalitiesMissingLycees   int                 `json:"localities_missing_lycees"`
	LocalitiesMissingColleges int                 `json:"localities_missing_colleges"`
	AddressesMissingLycees    int                 `json:"addresses_missing_lycees"`
	AddressesMissingColleges  int                 `json:"addresses_missing_colleges"`
	ByDepartment              MissingByDepartment `json:"by_department"`
}

type MissingByDepartment struct {
	LocalitiesMissingLycees   []DepartmentLocalities `json:"localities_missing_lycees"`
	LocalitiesMissingColleges []DepartmentLocalities `json:"localities_missing_colleges"`
	AddressesMissingLycees    []DepartmentLocalities `json:"addresses_missing_lycees"`
	AddressesMissingColleges  []DepartmentLocalities `json:"addresses_missing_colleges"`
}

type Report struct {
	Filter       Filter                 `json:"filter"`
	Departments  []string               `json:"departments"`
	KeyFigures   KeyFigures             `json:"key_figures"`
	ByDepartment []DepartmentCount      `json:"by_department"`
	PerCapita    []DepartmentRatio      `json:"per_capita"`
	SingleSector SingleSector           `json:"single_sector"`
	MultiSector  []DepartmentLocalities `json:"multi_sector"`
	Missing      Missing                `json:"missing"`
}

// Compute builds the report for the rows of table matching f.
func Compute(table *catchment.Table, f Filter, pops Populations) Report {
	all := table.Rows()
	rep := Report{Filter: f, Departments: departments(all)}

	wanted := map[string]bool{}
	for _, d := range f.Departments {
		wanted[catchment.NormalizeName(d)] = true
	}
	var rows []catchment.Row
	for _, r := range all {
		if len(wanted) > 0 && !wanted[r.Department] {
			continue
		}
		if f.Type != "" && r.EstablishmentType != f.Type {
			continue
		}
		rows = append(rows, r)
	}

	rep.KeyFigures = keyFigures(rows)
	rep.ByDepartment = byDepartment(rows)
	rep.PerCapita = perCapita(rep.ByDepartment, pops)
	rep.SingleSector = singleSector(rows)
	rep.MultiSector = multiSector(rows)
	rep.Missing = missing(rows)
	return rep
}

func departments(rows []catchment.Row) []string {
	set := map[string]bool{}
	for _, r := range rows {
		if strings.TrimSpace(r.Department) != "" {
			set[r.Department] = true
		}
	}
	return sortedKeys(set)
}

func keyFigures(rows []catchment.Row) KeyFigures {
	all, col, lyc := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, r := range rows {
		all[r.EstablishmentID] = true
		switch r.EstablishmentType {
		case catchment.College:
			col[r.EstablishmentID] = true
		case catchment.Lycee:
			lyc[r.EstablishmentID] = true
		}
	}
	return KeyFigures{Establishments: len(all), Colleges: len(col), Lycees: len(lyc)}
}

func byDepartment(rows []catchment.Row) []DepartmentCount {
	type sets struct{ all, col, lyc map[string]bool }
	per := map[string]*sets{}
	for _, r := range rows {
		s := per[r.Department]
		if s == nil {
			s = &sets{all: map[string]bool{}, col: map[string]bool{}, lyc: map[string]bool{}}
			per[r.Department] = s
		}
		s.all[r.EstablishmentID] = true
		if r.EstablishmentType == catchment.College {
			s.col[r.EstablishmentID] = true
		} else {
			s.lyc[r.EstablishmentID] = true
		}
	}
	out := make([]DepartmentCount, 0, len(per))
	for d, s := range per {
		out = append(out, DepartmentCount{Department: d, Establishments: len(s.all), Colleges: len(s.col), Lycees: len(s.lyc)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// perCapita skips departments with no known population. An establishment is
// counted once even when it has both collège and lycée rows.
func perCapita(counts []DepartmentCount, pops Populations) []DepartmentRatio {
	var out []DepartmentRatio
	for _, c := range counts {
		pop, ok := pops.Of(c.Department)
		if !ok {
			continue
		}
		n := c.Establishments
		out = append(out, DepartmentRatio{
			Department:     c.Department,
			Establishments: n,
			Population:     pop,
			Per100k:        float64(n) / float64(pop) * 100000,
		})
	}
	return out
}

func singleSector(rows []catchment.Row) SingleSector {
	wholeAll := map[string]bool{}
	wholeCollege := map[string]bool{}
	for _, r := range rows {
		if _, ok := wholeAll[r.LocalityKey]; !ok {
			wholeAll[r.LocalityKey] = true
		}
		wholeAll[r.LocalityKey] = wholeAll[r.LocalityKey] && !r.HasStreet()

		if r.EstablishmentType == catchment.College {
			if _, ok := wholeCollege[r.LocalityKey]; !ok {
				wholeCollege[r.LocalityKey] = true
			}
			wholeCollege[r.LocalityKey] = wholeCollege[r.LocalityKey] && !r.HasStreet()
		}
	}
	return SingleSector{
		Localities:          len(wholeAll),
		SingleSector:        countTrue(wholeAll),
		SingleSectorCollege: countTrue(wholeCollege),
	}
}

// multiSector groups by department the localities with street-level rules.
func multiSector(rows []catchment.Row) []DepartmentLocalities {
	per := map[string]map[string]bool{}
	for _, r := range rows {
		if !r.HasStreet() {
			continue
		}
		addTo(per, r.Department, r.LocalityName)
	}
	return grouped(per)
}

type address struct {
	locality string
	street   string
}

func missing(rows []catchment.Row) Missing {
	dept := map[string]string{}
	name := map[string]string{}
	colLoc, lycLoc := map[string]bool{}, map[string]bool{}
	colAddr, lycAddr := map[address]bool{}, map[address]bool{}
	for _, r := range rows {
		if catchment.Fold(r.Region) == OutOfRegion {
			continue
		}
		dept[r.LocalityKey] = r.Department
		name[r.LocalityKey] = r.LocalityName
		a := address{locality: r.LocalityKey, street: r.Street()}
		switch r.EstablishmentType {
		case catchment.College:
			colLoc[r.LocalityKey] = true
			colAddr[a] = true
		case catchment.Lycee:
			lycLoc[r.LocalityKey] = true
			lycAddr[a] = true
		}
	}

	collegeOnly := minus(colLoc, lycLoc)
	lyceeOnly := minus(lycLoc, colLoc)

	// Addresses of a locality missing entirely from the other map are already
	// counted as missing localities.
	addrOnly := func(have, other map[address]bool, otherLoc map[string]bool) map[address]bool {
		out := map[address]bool{}
		for a := range have {
			if !other[a] && otherLoc[a.locality] {
				out[a] = true
			}
		}
		return out
	}
	addrCollegeOnly := addrOnly(colAddr, lycAddr, lycLoc)
	addrLyceeOnly := addrOnly(lycAddr, colAddr, colLoc)

	byDeptLoc := func(locs map[string]bool) []DepartmentLocalities {
		per := map[string]map[string]bool{}
		for l := range locs {
			addTo(per, dept[l], name[l])
		}
		return grouped(per)
	}
	byDeptAddr := func(addrs map[address]bool) []DepartmentLocalities {
		per := map[string]map[string]bool{}
		counts := map[string]int{}
		for a := range addrs {
			addTo(per, dept[a.locality], name[a.locality])
			counts[dept[a.locality]]++
		}
		out := grouped(per)
		for i := range out {
			out[i].Count = counts[out[i].Department]
		}
		return out
	}

	return Missing{
		LocalitiesMissingLycees:   len(collegeOnly),
		LocalitiesMissingColleges: len(lyceeOnly),
		AddressesMissingLycees:    len(addrCollegeOnly),
		AddressesMissingColleges:  len(addrLyceeOnly),
		ByDepartment: MissingByDepartment{
			LocalitiesMissingLycees:   byDeptLoc(collegeOnly),
			LocalitiesMissingColleges: byDeptLoc(lyceeOnly),
			AddressesMissingLycees:    byDeptAddr(addrCollegeOnly),
			AddressesMissingColleges:  byDeptAddr(addrLyceeOnly),
		},
	}
}

func addTo(per map[string]map[string]bool, key, value string) {
	if per[key] == nil {
		per[key] = map[string]bool{}
	}
	per[key][value] = true
}

func grouped(per map[string]map[string]bool) []DepartmentLocalities {
	out := []DepartmentLocalities{}
	for _, d := range sortedKeys(boolKeys(per)) {
		names := sortedKeys(per[d])
		out = append(out, DepartmentLocalities{
			Department: d,
			Count:      len(names),
			Localities: names,
			Summary:    FormatLocalities(names),
		})
	}
	return out
}

// FormatLocalities renders "Villes: A, B, ..." with at most ten names.
func FormatLocalities(names []string) string {
	if len(names) > listedLocalities {
		return "Villes: " + strings.Join(names[:listedLocalities], ", ") + "..."
	}
	return "Villes: " + strings.Join(names, ", ")
}

func minus(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		if !b[k] {
			out[k] = true
		}
	}
	return out
}

func countTrue(m map[string]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

func boolKeys[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
