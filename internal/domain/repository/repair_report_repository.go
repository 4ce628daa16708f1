package repository

import (
	"context"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// RepairReportRepository define el puerto de persistencia para reportes de reparación.
type RepairReportRepository interface {
	Create(ctx context.Context, report *entity.RepairReport) error
	GetByID(ctx context.Context, id string) (*entity.RepairReport, error)
	GetForUpdate(ctx context.Context, id string) (*entity.RepairReport, error)
	Update(ctx context.Context, report *entity.RepairReport) error
	List(ctx context.Context, facilityID, status string, limit, offset int) ([]*entity.RepairReport, error)
	// GetOpenByItem retorna el reporte abierto de una unidad o nil.
	GetOpenByItem(ctx context.Context, itemID string) (*entity.RepairReport, error)
	CountOpen(ctx context.Context, facilityID string) (int, error)
}
