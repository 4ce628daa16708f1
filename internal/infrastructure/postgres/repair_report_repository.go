package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.RepairReportRepository = (*RepairReportRepo)(nil)

const repairColumns = `id, facility_id, device_item_id, device_type_id, description, status, from_rented, reported_by, created_at, updated_at, completed_at`

// RepairReportRepo implementación del puerto RepairReportRepository sobre PostgreSQL.
type RepairReportRepo struct {
	q Querier
}

// NewRepairReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRepairReportRepository(q Querier) *RepairReportRepo {
	return &RepairReportRepo{q: q}
}

func scanRepair(row pgx.Row) (*entity.RepairReport, error) {
	var rep entity.RepairReport
	err := row.Scan(&rep.ID, &rep.FacilityID, &rep.DeviceItemID, &rep.DeviceTypeID, &rep.Description,
		&rep.Status, &rep.FromRented, &rep.ReportedBy, &rep.CreatedAt, &rep.UpdatedAt, &rep.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Create persiste un reporte.
func (r *RepairReportRepo) Create(ctx context.Context, rep *entity.RepairReport) error {
	query := `INSERT INTO repair_reports (` + repairColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		rep.ID, rep.FacilityID, rep.DeviceItemID, rep.DeviceTypeID, rep.Description,
		rep.Status, rep.FromRented, rep.ReportedBy, rep.CreatedAt, rep.UpdatedAt, rep.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert repair report: %w", err)
	}
	return nil
}

func (r *RepairReportRepo) getOne(ctx context.Context, where string, args ...any) (*entity.RepairReport, error) {
	rep, err := scanRepair(r.q.QueryRow(ctx, `SELECT `+repairColumns+` FROM repair_reports WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repair report: %w", err)
	}
	return rep, nil
}

// GetByID obtiene un reporte por ID.
func (r *RepairReportRepo) GetByID(ctx context.Context, id string) (*entity.RepairReport, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetForUpdate obtiene el reporte y bloquea la fila.
func (r *RepairReportRepo) GetForUpdate(ctx context.Context, id string) (*entity.RepairReport, error) {
	return r.getOne(ctx, `id = $1 FOR UPDATE`, id)
}

// GetOpenByItem reporte abierto (reported / in_progress) de una unidad.
func (r *RepairReportRepo) GetOpenByItem(ctx context.Context, itemID string) (*entity.RepairReport, error) {
	return r.getOne(ctx, `device_item_id = $1 AND status IN ($2, $3) LIMIT 1`,
		itemID, entity.RepairStatusReported, entity.RepairStatusInProgress)
}

// Update persiste estado y fechas.
func (r *RepairReportRepo) Update(ctx context.Context, rep *entity.RepairReport) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE repair_reports SET status = $2, description = $3, updated_at = $4, completed_at = $5 WHERE id = $1`,
		rep.ID, rep.Status, rep.Description, rep.UpdatedAt, rep.CompletedAt)
	if err != nil {
		return fmt.Errorf("update repair report: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista reportes de una sede, más recientes primero.
func (r *RepairReportRepo) List(ctx context.Context, facilityID, status string, limit, offset int) ([]*entity.RepairReport, error) {
	query := `SELECT ` + repairColumns + ` FROM repair_reports WHERE facility_id = $1`
	args := []any{facilityID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list repair reports: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.RepairReport, 0)
	for rows.Next() {
		rep, err := scanRepair(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repair report: %w", err)
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}

// CountOpen cuenta reportes abiertos de una sede.
func (r *RepairReportRepo) CountOpen(ctx context.Context, facilityID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM repair_reports WHERE facility_id = $1 AND status IN ($2, $3)`,
		facilityID, entity.RepairStatusReported, entity.RepairStatusInProgress).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open repairs: %w", err)
	}
	return n, nil
}
