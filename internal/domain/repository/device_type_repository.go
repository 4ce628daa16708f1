package repository

import (
	"context"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// DeviceTypeRepository define el puerto de persistencia para tipos de dispositivo.
type DeviceTypeRepository interface {
	Create(ctx context.Context, deviceType *entity.DeviceType) error
	GetByID(ctx context.Context, id string) (*entity.DeviceType, error)
	GetByName(ctx context.Context, facilityID, name string) (*entity.DeviceType, error)
	ListByFacility(ctx context.Context, facilityID string) ([]*entity.DeviceType, error)
}
