package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.FacilityRepository = (*FacilityRepo)(nil)

// FacilityRepo implementación del puerto FacilityRepository sobre PostgreSQL.
type FacilityRepo struct {
	pool *pgxpool.Pool
}

// NewFacilityRepository construye el adaptador de persistencia para sedes.
func NewFacilityRepository(pool *pgxpool.Pool) *FacilityRepo {
	return &FacilityRepo{pool: pool}
}

// Create persiste una nueva sede.
func (r *FacilityRepo) Create(ctx context.Context, f *entity.Facility) error {
	query := `
		INSERT INTO facilities (id, name, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, f.ID, f.Name, f.Address, f.Phone, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert facility: %w", err)
	}
	return nil
}

// GetByID obtiene una sede por ID.
func (r *FacilityRepo) GetByID(ctx context.Context, id string) (*entity.Facility, error) {
	query := `
		SELECT id, name, address, phone, created_at, updated_at
		FROM facilities WHERE id = $1`
	var f entity.Facility
	err := r.pool.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.Address, &f.Phone, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return &f, nil
}

// Update actualiza una sede existente.
func (r *FacilityRepo) Update(ctx context.Context, f *entity.Facility) error {
	query := `
		UPDATE facilities SET name = $2, address = $3, phone = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, f.ID, f.Name, f.Address, f.Phone, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update facility: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista sedes con paginación.
func (r *FacilityRepo) List(ctx context.Context, limit, offset int) ([]*entity.Facility, error) {
	query := `
		SELECT id, name, address, phone, created_at, updated_at
		FROM facilities ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Facility, 0)
	for rows.Next() {
		var f entity.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &f.Phone, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}
