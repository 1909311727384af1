package postgres

import (
	"context"
	"fmt"

	"github.com/hydromet/orobnat-etl/internal/domain"
)

// ActiveMunicipalities loads the monitored localities, in insertion order.
func (s *Store) ActiveMunicipalities(ctx context.Context) ([]domain.Municipality, error) {
	rows, err := s.pool.Query(ctx, `
SELECT COALESCE(city_name, ''), water_code, commune_code
FROM cities
WHERE active
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select active cities: %w", err)
	}
	defer rows.Close()

	var out []domain.Municipality
	for rows.Next() {
		var m domain.Municipality
		if err := rows.Scan(&m.Name, &m.WaterCode, &m.CommuneCode); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
