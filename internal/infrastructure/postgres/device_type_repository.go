package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.DeviceTypeRepository = (*DeviceTypeRepo)(nil)

// DeviceTypeRepo implementación del puerto DeviceTypeRepository sobre PostgreSQL.
type DeviceTypeRepo struct {
	q Querier
}

// NewDeviceTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeviceTypeRepository(q Querier) *DeviceTypeRepo {
	return &DeviceTypeRepo{q: q}
}

// Create persiste un tipo de dispositivo.
func (r *DeviceTypeRepo) Create(ctx context.Context, dt *entity.DeviceType) error {
	query := `
		INSERT INTO device_types (id, facility_id, category, name, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, dt.ID, dt.FacilityID, dt.Category, dt.Name, dt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert device type: %w", err)
	}
	return nil
}

func (r *DeviceTypeRepo) getOne(ctx context.Context, where string, args ...any) (*entity.DeviceType, error) {
	query := `SELECT id, facility_id, category, name, created_at FROM device_types WHERE ` + where
	var dt entity.DeviceType
	err := r.q.QueryRow(ctx, query, args...).Scan(&dt.ID, &dt.FacilityID, &dt.Category, &dt.Name, &dt.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device type: %w", err)
	}
	return &dt, nil
}

// GetByID obtiene un tipo por ID.
func (r *DeviceTypeRepo) GetByID(ctx context.Context, id string) (*entity.DeviceType, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByName obtiene un tipo por nombre dentro de la sede.
func (r *DeviceTypeRepo) GetByName(ctx context.Context, facilityID, name string) (*entity.DeviceType, error) {
	return r.getOne(ctx, `facility_id = $1 AND name = $2`, facilityID, name)
}

// ListByFacility lista los tipos de una sede.
func (r *DeviceTypeRepo) ListByFacility(ctx context.Context, facilityID string) ([]*entity.DeviceType, error) {
	query := `SELECT id, facility_id, category, name, created_at FROM device_types WHERE facility_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, facilityID)
	if err != nil {
		return nil, fmt.Errorf("list device types: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.DeviceType, 0)
	for rows.Next() {
		var dt entity.DeviceType
		if err := rows.Scan(&dt.ID, &dt.FacilityID, &dt.Category, &dt.Name, &dt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan device type: %w", err)
		}
		list = append(list, &dt)
	}
	return list, rows.Err()
}
