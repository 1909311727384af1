package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hydromet/orobnat-etl/internal/domain"
)

// UpsertCriteria writes the parent record, keyed by id.
func (s *Store) UpsertCriteria(ctx context.Context, c domain.Criteria) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO fait_anl_criteres_recherche (id, departement, commune, reseau, communes, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (id) DO UPDATE SET
	departement = EXCLUDED.departement,
	commune     = EXCLUDED.commune,
	reseau      = EXCLUDED.reseau,
	communes    = EXCLUDED.communes,
	updated_at  = NOW()`,
		c.ID, c.Departement, c.Commune, c.Reseau, c.Communes)
	if err != nil {
		return fmt.Errorf("upsert criteres: %w", err)
	}
	return nil
}

// UpsertGeneralInfo writes the sampling circumstances, keyed by id.
func (s *Store) UpsertGeneralInfo(ctx context.Context, g domain.GeneralInfo) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO fait_anl_informations_generales
	(id, date_prelevement, commune_prelevement, installation, service_distribution, responsable_distribution, maitre_ouvrage, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (id) DO UPDATE SET
	date_prelevement         = EXCLUDED.date_prelevement,
	commune_prelevement      = EXCLUDED.commune_prelevement,
	installation             = EXCLUDED.installation,
	service_distribution     = EXCLUDED.service_distribution,
	responsable_distribution = EXCLUDED.responsable_distribution,
	maitre_ouvrage           = EXCLUDED.maitre_ouvrage,
	updated_at               = NOW()`,
		g.ID, g.SampleDate, g.SampleCommune, g.Installation, g.DistributionService, g.DistributionManager, g.ProjectOwner)
	if err != nil {
		return fmt.Errorf("upsert informations: %w", err)
	}
	return nil
}

// UpsertConformity writes the regulatory conclusions, keyed by id.
func (s *Store) UpsertConformity(ctx context.Context, c domain.Conformity) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO fait_anl_conformite
	(id, conclusions_sanitaires, conformite_bacteriologique, conformite_physico_chimique, respect_references_qualite, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (id) DO UPDATE SET
	conclusions_sanitaires      = EXCLUDED.conclusions_sanitaires,
	conformite_bacteriologique  = EXCLUDED.conformite_bacteriologique,
	conformite_physico_chimique = EXCLUDED.conformite_physico_chimique,
	respect_references_qualite  = EXCLUDED.respect_references_qualite,
	updated_at                  = NOW()`,
		c.ID, c.SanitaryConclusions, c.Bacteriological, c.PhysicoChemical, c.QualityReferences)
	if err != nil {
		return fmt.Errorf("upsert conformite: %w", err)
	}
	return nil
}

// UpsertResultRows writes all result rows of one report in a single batch,
// keyed by (id, parametre).
func (s *Store) UpsertResultRows(ctx context.Context, rows []domain.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
INSERT INTO fait_anl_resultats_analyses (id, parametre, valeur, valeur_num, limite_qualite, reference_qualite, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (id, parametre) DO UPDATE SET
	valeur            = EXCLUDED.valeur,
	valeur_num        = EXCLUDED.valeur_num,
	limite_qualite    = EXCLUDED.limite_qualite,
	reference_qualite = EXCLUDED.reference_qualite,
	updated_at        = NOW()`

	for _, r := range rows {
		batch.Queue(query, r.ID, r.Parameter, r.Value, r.NumericValue, r.QualityLimit, r.QualityReference)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upsert resultats: %w", err)
		}
	}
	return nil
}

// AnalysisExists reports whether a parent record exists for the identifier.
func (s *Store) AnalysisExists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM fait_anl_criteres_recherche WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check analysis exists: %w", err)
	}
	return exists, nil
}

// ResultRowsFor fetches the persisted result rows for one identifier.
func (s *Store) ResultRowsFor(ctx context.Context, id string) ([]domain.ResultRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, parametre, COALESCE(valeur, ''), valeur_num, COALESCE(limite_qualite, ''), COALESCE(reference_qualite, '')
FROM fait_anl_resultats_analyses
WHERE id = $1
ORDER BY parametre`, id)
	if err != nil {
		return nil, fmt.Errorf("select resultats: %w", err)
	}
	defer rows.Close()

	var out []domain.ResultRow
	for rows.Next() {
		var r domain.ResultRow
		if err := rows.Scan(&r.ID, &r.Parameter, &r.Value, &r.NumericValue, &r.QualityLimit, &r.QualityReference); err != nil {
			return nil, fmt.Errorf("scan resultat: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
