package domain

import (
	"net/url"
	"strings"
)

// Municipality is one monitored locality from the cities table.
type Municipality struct {
	Name        string // display name, may be empty
	WaterCode   string // OROBNAT network code, e.g. "095000386_095"
	CommuneCode string // INSEE commune code, e.g. "95176"
}

// Department derives the département code from the water-system code: its
// first three characters. Returns "" when the code is shorter.
func (m Municipality) Department() string {
	code := strings.TrimSpace(m.WaterCode)
	if len(code) < 3 {
		return ""
	}
	return code[:3]
}

// Label returns a human-readable name for logs and summaries, falling back to
// the INSEE code when no display name is recorded.
func (m Municipality) Label() string {
	if m.Name != "" {
		return m.Name
	}
	if m.CommuneCode != "" {
		return m.CommuneCode
	}
	return m.WaterCode
}

// SearchDefaults carries the fixed search-form values shared by every query.
type SearchDefaults struct {
	RegionID string // e.g. "11" (Île-de-France)
	Usage    string // e.g. "AEP" (alimentation en eau potable)
	Position string // posPLV sampling-position selector, e.g. "0"
}

// SearchPayload mirrors the seven fields of the OROBNAT search form. Built
// once per municipality and never mutated.
type SearchPayload struct {
	Methode     string
	RegionID    string
	Usage       string
	Position    string
	Departement string
	Commune     string // INSEE code, form field "communeDepartement"
	Reseau      string // water-system code
}

// BuildSearchPayload derives the search form values from a municipality
// record. Pure and deterministic; blank source codes become empty fields.
func BuildSearchPayload(m Municipality, d SearchDefaults) SearchPayload {
	return SearchPayload{
		Methode:     "rechercher",
		RegionID:    d.RegionID,
		Usage:       d.Usage,
		Position:    d.Position,
		Departement: m.Department(),
		Commune:     strings.TrimSpace(m.CommuneCode),
		Reseau:      strings.TrimSpace(m.WaterCode),
	}
}

// Values encodes the payload under the exact form field names the registry
// expects.
func (p SearchPayload) Values() url.Values {
	return url.Values{
		"methode":            {p.Methode},
		"idRegion":           {p.RegionID},
		"usd":                {p.Usage},
		"posPLV":             {p.Position},
		"departement":        {p.Departement},
		"communeDepartement": {p.Commune},
		"reseau":             {p.Reseau},
	}
}
