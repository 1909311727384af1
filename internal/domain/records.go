package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingID is returned when a record is constructed without an analysis
// identifier. The identifier is the only mandatory field on every record.
var ErrMissingID = errors.New("analysis id is required")

// Criteria is the parent record of one sampling event: the search criteria
// that located it plus the communes the network serves.
type Criteria struct {
	ID          string
	Departement string
	Commune     string // INSEE code
	Reseau      string // water-system code
	Communes    string // CSV of served communes, may be empty
}

// NewCriteria builds the parent record from the search payload and the served
// communes extracted from the page.
func NewCriteria(id string, payload SearchPayload, servedCommunes []string) (Criteria, error) {
	if id == "" {
		return Criteria{}, fmt.Errorf("criteria: %w", ErrMissingID)
	}
	return Criteria{
		ID:          id,
		Departement: strings.TrimSpace(payload.Departement),
		Commune:     strings.TrimSpace(payload.Commune),
		Reseau:      strings.TrimSpace(payload.Reseau),
		Communes:    strings.Join(servedCommunes, ", "),
	}, nil
}

// GeneralInfo carries the sampling circumstances. Every field except the
// identifier is optional: absent labels stay nil rather than zero-filled.
type GeneralInfo struct {
	ID                  string
	SampleDate          *time.Time
	SampleCommune       *string
	Installation        *string
	DistributionService *string
	DistributionManager *string
	ProjectOwner        *string
}

// Conformity carries the regulatory conclusions of the report.
type Conformity struct {
	ID                  string
	SanitaryConclusions *string
	Bacteriological     *string
	PhysicoChemical     *string
	QualityReferences   *string
}

// ResultRow is one persisted analyte measurement, keyed by (ID, Parameter).
// Value keeps the raw report text ("<0,1 mg/L"); NumericValue holds the
// extracted number when one exists, nil for textual results like "nd".
type ResultRow struct {
	ID               string
	Parameter        string
	Value            string
	NumericValue     *float64
	QualityLimit     string
	QualityReference string
}

// NewResultRow validates the composite key before constructing a row.
func NewResultRow(id, parameter, value, limit, reference string) (ResultRow, error) {
	if id == "" {
		return ResultRow{}, fmt.Errorf("result row: %w", ErrMissingID)
	}
	if parameter == "" {
		return ResultRow{}, errors.New("result row: parameter is required")
	}
	row := ResultRow{
		ID:               id,
		Parameter:        parameter,
		Value:            value,
		QualityLimit:     limit,
		QualityReference: reference,
	}
	if v, ok := ParseFrenchFloat(value); ok {
		row.NumericValue = &v
	}
	return row, nil
}

// Records bundles the four record types produced for one sampling event,
// ready for foreign-key-ordered persistence.
type Records struct {
	Criteria    Criteria
	GeneralInfo GeneralInfo
	Conformity  Conformity
	Results     []ResultRow

	// UnmatchedParameters lists analyte names the allow-list rejected; they
	// are observable (logged, counted) but never persisted.
	UnmatchedParameters []string
}
