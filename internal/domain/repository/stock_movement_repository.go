package repository

import (
	"context"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del diario de movimientos (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByStock(ctx context.Context, facilityID, deviceTypeID string, limit, offset int) ([]*entity.StockMovement, error)
}
