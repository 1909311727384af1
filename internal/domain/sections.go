package domain

import (
	"strings"
	"time"
)

// Field is one (label, value) pair extracted from a key/value report table.
type Field struct {
	Label string
	Value string
}

// Fields preserves the document order of a section's rows. Lookups are
// accent- and case-insensitive substring matches; the first row whose label
// contains the fragment wins.
type Fields []Field

// Lookup returns the value of the first field whose normalized label contains
// the normalized fragment.
func (f Fields) Lookup(fragment string) (string, bool) {
	frag := NormalizeLabel(fragment)
	if frag == "" {
		return "", false
	}
	for _, field := range f {
		if strings.Contains(NormalizeLabel(field.Label), frag) {
			return field.Value, true
		}
	}
	return "", false
}

// lookupAny tries each fragment in priority order and returns the first hit.
func (f Fields) lookupAny(fragments ...string) (string, bool) {
	for _, frag := range fragments {
		if v, ok := f.Lookup(frag); ok {
			return v, true
		}
	}
	return "", false
}

// AnalysisRow is one decoded row of the "Résultats d'analyses" table.
type AnalysisRow struct {
	Parameter        string
	Value            string
	QualityLimit     string
	QualityReference string
}

// ParsedSections is the transient result of decoding one report page.
// Missing sections are represented as empty slices, never as errors.
type ParsedSections struct {
	GeneralInfo    Fields
	Conformity     Fields
	Results        []AnalysisRow
	ServedCommunes []string

	// Display labels resolved from the page's select elements; informational
	// only (logging), not persisted.
	DepartementLabel string
	CommuneLabel     string
}

// SampleDate extracts the sampling timestamp from the general-information
// section: the first field whose label mentions the prélèvement.
func (s ParsedSections) SampleDate() (time.Time, bool) {
	v, ok := s.GeneralInfo.lookupAny("date du prelevement", "prelevement")
	if !ok {
		return time.Time{}, false
	}
	return ParseDateAny(v)
}
