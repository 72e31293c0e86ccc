package dashboard

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
)

//go:embed populations.yaml
var defaultPopulations []byte

// Populations maps a folded department name (no accents, upper case) to its
// population.
type Populations map[string]int

type populationsFile struct {
	Year        int            `yaml:"year"`
	Source      string         `yaml:"source"`
	Departments map[string]int `yaml:"departments"`
}

// DefaultPopulations returns the embedded INSEE 2020 table.
func DefaultPopulations() Populations {
	p, err := ParsePopulations(defaultPopulations)
	if err != nil {
		panic(fmt.Sprintf("embedded populations: %v", err))
	}
	return p
}

// LoadPopulations reads a populations YAML file. An empty path returns the
// embedded table.
func LoadPopulations(path string) (Populations, error) {
	if path == "" {
		return DefaultPopulations(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePopulations(b)
}

func ParsePopulations(b []byte) (Populations, error) {
	var f populationsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse populations: %w", err)
	}
	if len(f.Departments) == 0 {
		return nil, fmt.Errorf("parse populations: no departments")
	}
	out := make(Populations, len(f.Departments))
	for name, n := range f.Departments {
		if n <= 0 {
			return nil, fmt.Errorf("parse populations: %s has population %d", name, n)
		}
		out[catchment.Fold(name)] = n
	}
	return out, nil
}

// Of looks a department up, ignoring accents and case.
func (p Populations) Of(department string) (int, bool) {
	n, ok := p[catchment.Fold(department)]
	return n, ok
}
