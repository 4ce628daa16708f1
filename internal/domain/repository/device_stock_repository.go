package repository

import (
	"context"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// DeviceStockRepository define el puerto para los contadores por (sede, tipo).
// Usado dentro de transacciones para garantizar consistencia.
type DeviceStockRepository interface {
	Get(ctx context.Context, facilityID, deviceTypeID string) (*entity.DeviceStock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, facilityID, deviceTypeID string) (*entity.DeviceStock, error)
	// Create inserta una fila en cero; no falla si ya existe.
	Create(ctx context.Context, stock *entity.DeviceStock) error
	// Update persiste los contadores e incrementa Version.
	Update(ctx context.Context, stock *entity.DeviceStock) error
	ListByFacility(ctx context.Context, facilityID string) ([]*entity.DeviceStock, error)
}
