package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

// DeviceUseCase tipos de dispositivo y unidades físicas de una sede.
// Toda variación de contadores pasa por el libro (ledger.LedgerUseCase).
type DeviceUseCase struct {
	facilities repository.FacilityRepository
	ledger     *ledger.LedgerUseCase
}

// NewDeviceUseCase construye el caso de uso.
func NewDeviceUseCase(facilities repository.FacilityRepository, ledgerUC *ledger.LedgerUseCase) *DeviceUseCase {
	return &DeviceUseCase{facilities: facilities, ledger: ledgerUC}
}

// CreateType crea un tipo de dispositivo y su fila de contadores en cero, en una transacción.
// El nombre se normaliza a NFC; (sede, nombre) es único.
func (uc *DeviceUseCase) CreateType(ctx context.Context, facilityID string, in dto.CreateDeviceTypeRequest) (*dto.DeviceTypeResponse, error) {
	name := entity.NormalizeDeviceName(in.Name)
	if name == "" || !entity.IsValidCategory(in.Category) {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	now := time.Now()
	dt := &entity.DeviceType{
		ID:         uuid.New().String(),
		FacilityID: facilityID,
		Category:   in.Category,
		Name:       name,
		CreatedAt:  now,
	}
	err := uc.ledger.Execute(ctx, func(ctx context.Context, repos ledger.Repos) error {
		if err := repos.DeviceTypes.Create(ctx, dt); err != nil {
			return err
		}
		return repos.Stock.Create(ctx, &entity.DeviceStock{
			FacilityID:   facilityID,
			DeviceTypeID: dt.ID,
			UpdatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toDeviceTypeResponse(dt), nil
}

// ListTypes lista los tipos de una sede.
func (uc *DeviceUseCase) ListTypes(ctx context.Context, facilityID string) ([]dto.DeviceTypeResponse, error) {
	var list []*entity.DeviceType
	err := uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		var err error
		list, err = repos.DeviceTypes.ListByFacility(ctx, facilityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeviceTypeResponse, 0, len(list))
	for _, dt := range list {
		out = append(out, *toDeviceTypeResponse(dt))
	}
	return out, nil
}

// RegisterItem da de alta una unidad física: inserta el ítem y suma una unidad
// (total+1, available+1) en la misma transacción.
func (uc *DeviceUseCase) RegisterItem(ctx context.Context, facilityID, userID string, in dto.RegisterDeviceItemRequest) (*dto.DeviceItemResponse, error) {
	serial := strings.TrimSpace(in.Serial)
	if serial == "" || in.DeviceTypeID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.DeviceItem{
		ID:           uuid.New().String(),
		FacilityID:   facilityID,
		DeviceTypeID: in.DeviceTypeID,
		Serial:       serial,
		Status:       entity.ItemStatusAvailable,
		Note:         in.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.ledger.Execute(ctx, func(ctx context.Context, repos ledger.Repos) error {
		dt, err := repos.DeviceTypes.GetByID(ctx, in.DeviceTypeID)
		if err != nil {
			return err
		}
		if dt == nil || dt.FacilityID != facilityID {
			return domain.ErrNotFound
		}
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		_, err = uc.ledger.Apply(ctx, repos, ledger.Operation{
			Type:         entity.MovementTypeRegister,
			FacilityID:   facilityID,
			DeviceTypeID: in.DeviceTypeID,
			Quantity:     1,
			Reference:    item.ID,
			UserID:       userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDeviceItemResponse(item), nil
}

// GetItem obtiene una unidad de la sede.
func (uc *DeviceUseCase) GetItem(ctx context.Context, facilityID, id string) (*dto.DeviceItemResponse, error) {
	var item *entity.DeviceItem
	err := uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		var err error
		item, err = repos.Items.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item == nil || item.FacilityID != facilityID {
		return nil, domain.ErrNotFound
	}
	return toDeviceItemResponse(item), nil
}

// ListItems lista unidades por sede, tipo y estado.
func (uc *DeviceUseCase) ListItems(ctx context.Context, filter repository.DeviceItemFilter) (*dto.DeviceItemListResponse, error) {
	var list []*entity.DeviceItem
	err := uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		var err error
		list, err = repos.Items.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DeviceItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toDeviceItemResponse(it))
	}
	return &dto.DeviceItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func (uc *DeviceUseCase) requireFacility(ctx context.Context, facilityID string) error {
	f, err := uc.facilities.GetByID(ctx, facilityID)
	if err != nil {
		return err
	}
	if f == nil {
		return domain.ErrNotFound
	}
	return nil
}

func toDeviceTypeResponse(dt *entity.DeviceType) *dto.DeviceTypeResponse {
	return &dto.DeviceTypeResponse{
		ID:         dt.ID,
		FacilityID: dt.FacilityID,
		Category:   dt.Category,
		Name:       dt.Name,
		CreatedAt:  dt.CreatedAt,
	}
}

func toDeviceItemResponse(it *entity.DeviceItem) *dto.DeviceItemResponse {
	return &dto.DeviceItemResponse{
		ID:           it.ID,
		FacilityID:   it.FacilityID,
		DeviceTypeID: it.DeviceTypeID,
		Serial:       it.Serial,
		Status:       it.Status,
		Note:         it.Note,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}
