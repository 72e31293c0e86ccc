// Package pages describes the navigable pages of the front end and whether
// each one can currently be served.
package pages

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
)

type Page string

const (
	Search    Page = "search"
	Perimetre Page = "perimetre"
	Stats     Page = "stats"
	About     Page = "about"
	Legal     Page = "legal"
)

var ErrUnknownPage = errors.New("unknown page")

//go:embed content.yaml
var contentYAML []byte

type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
	Links   []Link `yaml:"links" json:"links,omitempty"`
}

// Descriptor is what the front end needs to draw one page. Error is set when
// the page depends on a catchment table that failed to load.
type Descriptor struct {
	Page           Page      `yaml:"page" json:"page"`
	Title          string    `yaml:"title" json:"title"`
	Menu           string    `yaml:"menu" json:"menu"`
	Endpoint       string    `yaml:"endpoint" json:"endpoint,omitempty"`
	NeedsCatchment bool      `yaml:"needs_catchment" json:"needs_catchment"`
	Notice         string    `yaml:"notice" json:"notice,omitempty"`
	Sections       []Section `yaml:"sections" json:"sections,omitempty"`
	Error          string    `json:"error,omitempty"`
}

var descriptors = mustParse(contentYAML)

func mustParse(b []byte) []Descriptor {
	var out []Descriptor
	if err := yaml.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("pages: content.yaml: %v", err))
	}
	return out
}

// ParsePage validates a page name.
func ParsePage(s string) (Page, error) {
	for _, d := range descriptors {
		if string(d.Page) == s {
			return d.Page, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}

// AppState is built once at startup and passed to whoever needs the table.
type AppState struct {
	Table   *catchment.Table
	LoadErr error
	Source  string
}

// Ready returns the reason the catchment table cannot be used, or nil.
func (s *AppState) Ready() error {
	if s == nil {
		return errors.New("application state not initialised")
	}
	if s.LoadErr != nil {
		return s.LoadErr
	}
	if s.Table.Len() == 0 {
		return catchment.ErrNoRows
	}
	return nil
}

// Render returns the descriptor of page. Pages needing the table carry the
// load error instead of failing, so the menu can still be drawn.
func Render(state *AppState, page Page) (Descriptor, error) {
	for _, d := range descriptors {
		if d.Page != page {
			continue
		}
		if d.NeedsCatchment {
			if err := state.Ready(); err != nil {
				d.Error = "Erreur lors du chargement du fichier : " + err.Error()
			}
		}
		return d, nil
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownPage, page)
}

// Menu lists every page in menu order.
func Menu(state *AppState) []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		r, _ := Render(state, d.Page)
		r.Sections = nil
		out = append(out, r)
	}
	return out
}
