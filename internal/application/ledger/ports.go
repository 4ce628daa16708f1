package ledger

import (
	"context"

	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Stock       repository.DeviceStockRepository
	Items       repository.DeviceItemRepository
	Movements   repository.StockMovementRepository
	Rentals     repository.RentalRepository
	Repairs     repository.RepairReportRepository
	DeviceTypes repository.DeviceTypeRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback y ningún contador cambia.
// Los fallos de bloqueo o serialización se reportan envueltos en domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
