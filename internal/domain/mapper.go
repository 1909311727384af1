package domain

import (
	"fmt"
	"strings"
)

// Label-fragment dictionaries. Fragments are matched accent- and
// case-insensitively as substrings of the report's row labels; within each
// list, earlier fragments take priority (alternate legal phrasings of the
// same field are listed most-specific first). Changing the order changes
// which label wins when a report carries several candidates, so the order is
// part of the extraction contract.
var (
	sampleDateLabels          = []string{"date du prelevement", "prelevement"}
	sampleCommuneLabels       = []string{"commune de prelevement", "commune"}
	installationLabels        = []string{"installation"}
	distributionServiceLabels = []string{"service public de distribution", "service de distribution", "service"}
	distributionManagerLabels = []string{"responsable de la distribution", "responsable"}
	projectOwnerLabels        = []string{"maitre d'ouvrage", "maitre"}

	sanitaryConclusionsLabels = []string{"conclusions sanitaires", "conclusion sanitaire"}
	bacteriologicalLabels     = []string{"bacteriolog"}
	physicoChemicalLabels     = []string{"physico"}
	qualityReferencesLabels   = []string{"references de qualite", "references", "reference"}
)

// parameterAllowList restricts which analytes are persisted. Fragments are
// matched against the normalized parameter name; the first match decides.
// More specific fragments come before their prefixes ("ph terrain" before
// "ph", "chlore libre" before "chlore total" is order-neutral but kept
// grouped). Parameters matching nothing here are dropped from the normalized
// output and survive only in the raw report.
var parameterAllowList = []string{
	// Microbiology
	"entero",
	"spores sulfito",
	"aerobies revivifiables 22",
	"aerobies revivifiables 36",
	"coliformes",
	"escherichia coli",

	// Field physico-chemistry
	"temperature",
	"turbidite",
	"chlore libre",
	"chlore total",
	"ph terrain",
	"ph",
	"conductivite",

	// Chemistry
	"ammonium",
	"aluminium total",

	// Qualitative observations
	"coloration",
	"couleur",
	"aspect",
	"odeur",
	"saveur",
	"commentaire",
}

// MapRecords turns the parsed sections of one report into the four persisted
// record types under the given identifier. Pure: no I/O, deterministic for
// identical inputs.
func MapRecords(sections ParsedSections, payload SearchPayload, id string) (Records, error) {
	criteria, err := NewCriteria(id, payload, sections.ServedCommunes)
	if err != nil {
		return Records{}, err
	}

	results, unmatched, err := mapResults(id, sections.Results)
	if err != nil {
		return Records{}, err
	}

	return Records{
		Criteria:            criteria,
		GeneralInfo:         mapGeneralInfo(id, sections.GeneralInfo),
		Conformity:          mapConformity(id, sections.Conformity),
		Results:             results,
		UnmatchedParameters: unmatched,
	}, nil
}

func mapGeneralInfo(id string, info Fields) GeneralInfo {
	g := GeneralInfo{ID: id}
	if v, ok := info.lookupAny(sampleDateLabels...); ok {
		if t, parsed := ParseDateAny(v); parsed {
			g.SampleDate = &t
		}
	}
	g.SampleCommune = optional(info, sampleCommuneLabels)
	g.Installation = optional(info, installationLabels)
	g.DistributionService = optional(info, distributionServiceLabels)
	g.DistributionManager = optional(info, distributionManagerLabels)
	g.ProjectOwner = optional(info, projectOwnerLabels)
	return g
}

func mapConformity(id string, conf Fields) Conformity {
	return Conformity{
		ID:                  id,
		SanitaryConclusions: optional(conf, sanitaryConclusionsLabels),
		Bacteriological:     optional(conf, bacteriologicalLabels),
		PhysicoChemical:     optional(conf, physicoChemicalLabels),
		QualityReferences:   optional(conf, qualityReferencesLabels),
	}
}

// mapResults filters the raw analysis rows through the allow-list. Matched
// rows keep their raw cleaned parameter text as the row key so the composite
// primary key stays stable across runs.
func mapResults(id string, rows []AnalysisRow) ([]ResultRow, []string, error) {
	var out []ResultRow
	var unmatched []string
	for _, row := range rows {
		name := CleanText(row.Parameter)
		if name == "" {
			continue
		}
		if !allowedParameter(name) {
			unmatched = append(unmatched, name)
			continue
		}
		rec, err := NewResultRow(id, name, CleanText(row.Value), CleanText(row.QualityLimit), CleanText(row.QualityReference))
		if err != nil {
			return nil, nil, fmt.Errorf("map results: %w", err)
		}
		out = append(out, rec)
	}
	return out, unmatched, nil
}

func allowedParameter(name string) bool {
	n := NormalizeLabel(name)
	for _, frag := range parameterAllowList {
		if strings.Contains(n, frag) {
			return true
		}
	}
	return false
}

// optional resolves an ordered fragment list against a section, returning nil
// when no label matches or the matched value is blank.
func optional(fields Fields, fragments []string) *string {
	v, ok := fields.lookupAny(fragments...)
	if !ok {
		return nil
	}
	v = CleanText(v)
	if v == "" {
		return nil
	}
	return &v
}
