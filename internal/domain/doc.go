// Package domain models OROBNAT drinking-water analysis reports.
//
// # Data Source
//
// OROBNAT (https://orobnat.sante.gouv.fr) is the French Ministry of Health
// registry publishing drinking-water quality results per commune. There is no
// API: a search form is POSTed per water network and the answer is an HTML
// page with three titled sections:
//
//	"Informations générales"   — one table of <th> label / <td> value rows
//	"Conformité"               — same shape, regulatory conclusions
//	"Résultats d'analyses"     — one row per measured parameter, with
//	                             columns Paramètre / Valeur / Limite de
//	                             qualité / Référence de qualité
//
// Labels and table shapes drift between régions and over time, so all label
// matching is accent-insensitive substring matching against fixed fragment
// dictionaries, in declared priority order.
//
// # Identifier
//
// Each sampling event is keyed by "DD-MM-YYYY-<INSEE>": the sampling date
// from the general-information section plus the commune's INSEE code. When
// the date is missing or unparseable the current date stands in; when the
// INSEE code is missing, "00000". The same (date, INSEE) pair always yields
// the same identifier, which makes re-runs idempotent upserts rather than
// duplicate inserts. See [SynthesizeID].
//
// # Value conventions
//
// Result values are free text: "<0,1 mg/L", "12.34", "nd" (not detected).
// French decimals use a comma. Sampling timestamps use "HhMM" time notation
// ("12/05/2024 14h30"). [ParseFrenchFloat] and [ParseDateAny] normalize both.
//
// Only parameters matching the fixed analyte allow-list are persisted;
// anything else stays in the raw report only. This bounds the schema to known
// analytes at the cost of silently ignoring new ones.
package domain
