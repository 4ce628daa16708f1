package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.DeviceStockRepository = (*DeviceStockRepo)(nil)

const stockColumns = `facility_id, device_type_id, total, available, rented, broken, version, updated_at`

// DeviceStockRepo implementación de DeviceStockRepository sobre PostgreSQL (usable con pool o tx).
type DeviceStockRepo struct {
	q Querier
}

// NewDeviceStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewDeviceStockRepository(q Querier) *DeviceStockRepo {
	return &DeviceStockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.DeviceStock, error) {
	var s entity.DeviceStock
	err := row.Scan(&s.FacilityID, &s.DeviceTypeID, &s.Total, &s.Available, &s.Rented, &s.Broken, &s.Version, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene los contadores actuales de un tipo en una sede.
func (r *DeviceStockRepo) Get(ctx context.Context, facilityID, deviceTypeID string) (*entity.DeviceStock, error) {
	query := `SELECT ` + stockColumns + ` FROM device_stock WHERE facility_id = $1 AND device_type_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, facilityID, deviceTypeID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *DeviceStockRepo) GetForUpdate(ctx context.Context, facilityID, deviceTypeID string) (*entity.DeviceStock, error) {
	query := `SELECT ` + stockColumns + ` FROM device_stock WHERE facility_id = $1 AND device_type_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, facilityID, deviceTypeID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Create inserta la fila si no existe.
func (r *DeviceStockRepo) Create(ctx context.Context, s *entity.DeviceStock) error {
	query := `
		INSERT INTO device_stock (facility_id, device_type_id, total, available, rented, broken, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, now())
		ON CONFLICT (facility_id, device_type_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, s.FacilityID, s.DeviceTypeID, s.Total, s.Available, s.Rented, s.Broken)
	if err != nil {
		return fmt.Errorf("create stock: %w", err)
	}
	return nil
}

// Update persiste los contadores con control de versión; 0 filas afectadas = conflicto.
func (r *DeviceStockRepo) Update(ctx context.Context, s *entity.DeviceStock) error {
	query := `
		UPDATE device_stock
		SET total = $3, available = $4, rented = $5, broken = $6, version = version + 1, updated_at = $7
		WHERE facility_id = $1 AND device_type_id = $2 AND version = $8`
	cmd, err := r.q.Exec(ctx, query,
		s.FacilityID, s.DeviceTypeID, s.Total, s.Available, s.Rented, s.Broken, s.UpdatedAt, s.Version,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: versión de stock desactualizada", domain.ErrConflict)
	}
	s.Version++
	return nil
}

// ListByFacility lista los contadores de una sede.
func (r *DeviceStockRepo) ListByFacility(ctx context.Context, facilityID string) ([]*entity.DeviceStock, error) {
	query := `SELECT ` + stockColumns + ` FROM device_stock WHERE facility_id = $1 ORDER BY device_type_id`
	rows, err := r.q.Query(ctx, query, facilityID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.DeviceStock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
