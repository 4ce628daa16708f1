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

var _ repository.RentalRepository = (*RentalRepo)(nil)

const rentalColumns = `id, facility_id, borrower_name, borrower_phone, note, start_date, due_date, status, returned_at, created_by, created_at, updated_at`

// RentalRepo implementación del puerto RentalRepository sobre PostgreSQL (usable con pool o tx).
type RentalRepo struct {
	q Querier
}

// NewRentalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRentalRepository(q Querier) *RentalRepo {
	return &RentalRepo{q: q}
}

func scanRental(row pgx.Row) (*entity.Rental, error) {
	var rt entity.Rental
	err := row.Scan(&rt.ID, &rt.FacilityID, &rt.BorrowerName, &rt.BorrowerPhone, &rt.Note,
		&rt.StartDate, &rt.DueDate, &rt.Status, &rt.ReturnedAt, &rt.CreatedBy, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// Create persiste el alquiler y sus líneas (misma tx del caller).
func (r *RentalRepo) Create(ctx context.Context, rt *entity.Rental) error {
	query := `INSERT INTO rentals (` + rentalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		rt.ID, rt.FacilityID, rt.BorrowerName, rt.BorrowerPhone, rt.Note,
		rt.StartDate, rt.DueDate, rt.Status, rt.ReturnedAt, rt.CreatedBy, rt.CreatedAt, rt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	for _, l := range rt.Lines {
		itemIDs := l.ItemIDs
		if itemIDs == nil {
			itemIDs = []string{}
		}
		_, err := r.q.Exec(ctx,
			`INSERT INTO rental_lines (rental_id, device_type_id, quantity, item_ids) VALUES ($1, $2, $3, $4)`,
			rt.ID, l.DeviceTypeID, l.Quantity, itemIDs,
		)
		if err != nil {
			return fmt.Errorf("insert rental line: %w", err)
		}
	}
	return nil
}

func (r *RentalRepo) loadLines(ctx context.Context, rt *entity.Rental) error {
	rows, err := r.q.Query(ctx,
		`SELECT device_type_id, quantity, item_ids FROM rental_lines WHERE rental_id = $1 ORDER BY device_type_id`, rt.ID)
	if err != nil {
		return fmt.Errorf("list rental lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l := entity.RentalLine{RentalID: rt.ID}
		if err := rows.Scan(&l.DeviceTypeID, &l.Quantity, &l.ItemIDs); err != nil {
			return fmt.Errorf("scan rental line: %w", err)
		}
		rt.Lines = append(rt.Lines, l)
	}
	return rows.Err()
}

func (r *RentalRepo) get(ctx context.Context, id, suffix string) (*entity.Rental, error) {
	rt, err := scanRental(r.q.QueryRow(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rental: %w", err)
	}
	if err := r.loadLines(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// GetByID obtiene un alquiler con sus líneas.
func (r *RentalRepo) GetByID(ctx context.Context, id string) (*entity.Rental, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene el alquiler y bloquea la fila.
func (r *RentalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rental, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// MarkReturned cierra el alquiler.
func (r *RentalRepo) MarkReturned(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE rentals SET status = $2, returned_at = $3, updated_at = $3 WHERE id = $1`,
		id, entity.RentalStatusReturned, at)
	if err != nil {
		return fmt.Errorf("mark rental returned: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista alquileres de una sede, más recientes primero.
func (r *RentalRepo) List(ctx context.Context, f repository.RentalFilter) ([]*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE facility_id = $1`
	args := []any{f.FacilityID}
	pos := 2
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if !f.OverdueAt.IsZero() {
		query += fmt.Sprintf(" AND status = $%d AND due_date < $%d", pos, pos+1)
		args = append(args, entity.RentalStatusActive, f.OverdueAt)
		pos += 2
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	list := make([]*entity.Rental, 0)
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		list = append(list, rt)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Las líneas se cargan después de cerrar rows: una tx no admite dos consultas abiertas.
	for _, rt := range list {
		if err := r.loadLines(ctx, rt); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// CountActive cuenta alquileres activos y vencidos.
func (r *RentalRepo) CountActive(ctx context.Context, facilityID string, now time.Time) (int, int, error) {
	query := `
		SELECT count(*), count(*) FILTER (WHERE due_date < $3)
		FROM rentals WHERE facility_id = $1 AND status = $2`
	var active, overdue int
	if err := r.q.QueryRow(ctx, query, facilityID, entity.RentalStatusActive, now).Scan(&active, &overdue); err != nil {
		return 0, 0, fmt.Errorf("count active rentals: %w", err)
	}
	return active, overdue, nil
}
