package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.DeviceItemRepository = (*DeviceItemRepo)(nil)

const itemColumns = `id, facility_id, device_type_id, serial, status, note, created_at, updated_at`

// DeviceItemRepo implementación del puerto DeviceItemRepository sobre PostgreSQL.
type DeviceItemRepo struct {
	q Querier
}

// NewDeviceItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeviceItemRepository(q Querier) *DeviceItemRepo {
	return &DeviceItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.DeviceItem, error) {
	var it entity.DeviceItem
	if err := row.Scan(&it.ID, &it.FacilityID, &it.DeviceTypeID, &it.Serial, &it.Status, &it.Note, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste una unidad.
func (r *DeviceItemRepo) Create(ctx context.Context, it *entity.DeviceItem) error {
	query := `
		INSERT INTO device_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.FacilityID, it.DeviceTypeID, it.Serial, it.Status, it.Note, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert device item: %w", err)
	}
	return nil
}

func (r *DeviceItemRepo) get(ctx context.Context, id, suffix string) (*entity.DeviceItem, error) {
	query := `SELECT ` + itemColumns + ` FROM device_items WHERE id = $1` + suffix
	it, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device item: %w", err)
	}
	return it, nil
}

// GetByID obtiene una unidad por ID.
func (r *DeviceItemRepo) GetByID(ctx context.Context, id string) (*entity.DeviceItem, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la unidad y bloquea la fila.
func (r *DeviceItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.DeviceItem, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// UpdateStatus cambia el estado de la unidad.
func (r *DeviceItemRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE device_items SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		return fmt.Errorf("update device item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista unidades con filtros opcionales.
func (r *DeviceItemRepo) List(ctx context.Context, f repository.DeviceItemFilter) ([]*entity.DeviceItem, error) {
	query := `SELECT ` + itemColumns + ` FROM device_items WHERE facility_id = $1`
	args := []any{f.FacilityID}
	pos := 2
	if f.DeviceTypeID != "" {
		query += fmt.Sprintf(" AND device_type_id = $%d", pos)
		args = append(args, f.DeviceTypeID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	query += " ORDER BY serial"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list device items: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.DeviceItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// ListByType todas las unidades de un tipo.
func (r *DeviceItemRepo) ListByType(ctx context.Context, facilityID, deviceTypeID string) ([]*entity.DeviceItem, error) {
	return r.List(ctx, repository.DeviceItemFilter{FacilityID: facilityID, DeviceTypeID: deviceTypeID})
}
