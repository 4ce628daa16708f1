package repository

import (
	"context"
	"time"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// DeviceItemFilter filtros para listar unidades.
type DeviceItemFilter struct {
	FacilityID   string
	DeviceTypeID string
	Status       string
	Limit        int
	Offset       int
}

// DeviceItemRepository define el puerto de persistencia para unidades físicas.
type DeviceItemRepository interface {
	Create(ctx context.Context, item *entity.DeviceItem) error
	GetByID(ctx context.Context, id string) (*entity.DeviceItem, error)
	GetForUpdate(ctx context.Context, id string) (*entity.DeviceItem, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	List(ctx context.Context, filter DeviceItemFilter) ([]*entity.DeviceItem, error)
	// ListByType retorna todas las unidades de un tipo (sin paginar), para reconteo.
	ListByType(ctx context.Context, facilityID, deviceTypeID string) ([]*entity.DeviceItem, error)
}
