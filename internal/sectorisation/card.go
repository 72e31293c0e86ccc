package sectorisation

import (
	"strconv"
	"strings"

	"github.com/ThomasAyr/carte-scolaire/internal/catchment"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

// NotProvided replaces any missing directory field on a card.
const NotProvided = "Non renseigné"

// Card is the display form of an enriched establishment.
type Card struct {
	EstablishmentID   string                        `json:"establishment_id"`
	EstablishmentType catchment.EstablishmentType   `json:"establishment_type"`
	// Types holds both COLLEGE and LYCEE for a cité scolaire matched as both.
	Types             []catchment.EstablishmentType `json:"establishment_types"`
	Title             string                        `json:"title"`
	Address           string                        `json:"address"`
	Phone             string                        `json:"phone"`
	Email             string                        `json:"email"`
	Web               string                        `json:"web"`
	Students          string                        `json:"students"`
	Badges            []string                      `json:"badges"`
	Position          *provider.Coordinate          `json:"position,omitempty"`
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotProvided
	}
	return s
}

// NewCard formats e for display.
func NewCard(e EnrichedEstablishment) Card {
	d := e.Directory
	title := orNotProvided(d.Name)
	if d.TypeLabel != "" {
		title += " (" + d.TypeLabel + ")"
	}

	var addr []string
	if d.Address != "" {
		addr = append(addr, d.Address)
	}
	if place := strings.TrimSpace(d.PostalCode + " " + d.Commune); place != "" {
		addr = append(addr, place)
	}

	students := NotProvided
	if d.Students != nil {
		students = strconv.Itoa(*d.Students)
	}

	badges := d.Features.Labels()
	if badges == nil {
		badges = []string{}
	}

	types := e.Types
	if len(types) == 0 {
		types = []catchment.EstablishmentType{e.EstablishmentType}
	}

	return Card{
		EstablishmentID:   e.EstablishmentID,
		EstablishmentType: e.EstablishmentType,
		Types:             types,
		Title:             title,
		Address:           orNotProvided(strings.Join(addr, ", ")),
		Phone:             orNotProvided(d.Phone),
		Email:             orNotProvided(d.Email),
		Web:               orNotProvided(d.Web),
		Students:          students,
		Badges:            badges,
		Position:          d.Position,
	}
}
