package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo diario de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, facility_id, device_type_id, type, quantity, total, available, rented, broken, reference, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.FacilityID, m.DeviceTypeID, m.Type, m.Quantity,
		m.Total, m.Available, m.Rented, m.Broken,
		m.Reference, m.Reason, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByStock lista movimientos de un (sede, tipo), más recientes primero.
func (r *StockMovementRepo) ListByStock(ctx context.Context, facilityID, deviceTypeID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, facility_id, device_type_id, type, quantity, total, available, rented, broken, reference, reason, created_by, created_at
		FROM stock_movements WHERE facility_id = $1 AND device_type_id = $2
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, facilityID, deviceTypeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.FacilityID, &m.DeviceTypeID, &m.Type, &m.Quantity,
			&m.Total, &m.Available, &m.Rented, &m.Broken,
			&m.Reference, &m.Reason, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
