package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

// FacilityUseCase casos de uso CRUD para sedes.
type FacilityUseCase struct {
	repo repository.FacilityRepository
}

// NewFacilityUseCase construye el caso de uso.
func NewFacilityUseCase(repo repository.FacilityRepository) *FacilityUseCase {
	return &FacilityUseCase{repo: repo}
}

// Create crea una nueva sede.
func (uc *FacilityUseCase) Create(ctx context.Context, in dto.CreateFacilityRequest) (*dto.FacilityResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	facility := &entity.Facility{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   in.Address,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, facility); err != nil {
		return nil, err
	}
	return toFacilityResponse(facility), nil
}

// GetByID obtiene una sede por ID.
func (uc *FacilityUseCase) GetByID(ctx context.Context, id string) (*dto.FacilityResponse, error) {
	facility, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if facility == nil {
		return nil, domain.ErrNotFound
	}
	return toFacilityResponse(facility), nil
}

// Update actualiza una sede.
func (uc *FacilityUseCase) Update(ctx context.Context, id string, in dto.UpdateFacilityRequest) (*dto.FacilityResponse, error) {
	facility, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if facility == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		facility.Name = name
	}
	if in.Address != nil {
		facility.Address = *in.Address
	}
	if in.Phone != nil {
		facility.Phone = *in.Phone
	}
	facility.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, facility); err != nil {
		return nil, err
	}
	return toFacilityResponse(facility), nil
}

// List lista sedes con paginación.
func (uc *FacilityUseCase) List(ctx context.Context, limit, offset int) (*dto.FacilityListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FacilityResponse, 0, len(list))
	for _, f := range list {
		items = append(items, *toFacilityResponse(f))
	}
	return &dto.FacilityListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toFacilityResponse(f *entity.Facility) *dto.FacilityResponse {
	if f == nil {
		return nil
	}
	return &dto.FacilityResponse{
		ID:        f.ID,
		Name:      f.Name,
		Address:   f.Address,
		Phone:     f.Phone,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
