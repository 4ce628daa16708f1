package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de solo lectura para el panel. El porcentaje se calcula en SQL como
// NUMERIC y se decodifica a decimal.Decimal con el codec registrado en el pool.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// UtilizationByType contadores y uso por tipo de dispositivo.
func (r *DashboardRepo) UtilizationByType(ctx context.Context, facilityID string) ([]repository.UtilizationRow, error) {
	query := `
		SELECT s.device_type_id, t.name, s.total, s.available, s.rented, s.broken,
		       CASE WHEN s.total = 0 THEN 0::numeric
		            ELSE round(s.rented::numeric * 100 / s.total, 2) END AS utilization_pct
		FROM device_stock s
		JOIN device_types t ON t.id = s.device_type_id
		WHERE s.facility_id = $1
		ORDER BY t.name`
	rows, err := r.pool.Query(ctx, query, facilityID)
	if err != nil {
		return nil, fmt.Errorf("utilization by type: %w", err)
	}
	defer rows.Close()
	list := make([]repository.UtilizationRow, 0)
	for rows.Next() {
		var u repository.UtilizationRow
		if err := rows.Scan(&u.DeviceTypeID, &u.DeviceTypeName, &u.Total, &u.Available, &u.Rented, &u.Broken, &u.UtilizationPct); err != nil {
			return nil, fmt.Errorf("scan utilization: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
