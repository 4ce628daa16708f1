// Package repair sigue el ciclo de reparación de una unidad: reported → in_progress → completed.
// Abrir un reporte saca la unidad a broken en el libro; completarlo la devuelve a available.
package repair

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// RepairUseCase casos de uso de reportes de reparación.
type RepairUseCase struct {
	ledger *ledger.LedgerUseCase
	now    func() time.Time
}

// NewRepairUseCase construye el caso de uso.
func NewRepairUseCase(ledgerUC *ledger.LedgerUseCase) *RepairUseCase {
	return &RepairUseCase{ledger: ledgerUC, now: time.Now}
}

// Open reporta una unidad como rota. Si estaba prestada el descuento sale de rented.
// Una unidad con un reporte abierto no admite otro (ErrInvalidTransition).
func (uc *RepairUseCase) Open(ctx context.Context, facilityID, userID string, in dto.OpenRepairRequest) (*dto.RepairReportResponse, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" || in.DeviceItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var report *entity.RepairReport
	err := uc.ledger.Execute(ctx, func(ctx context.Context, repos ledger.Repos) error {
		// Lectura sin bloqueo solo para conocer el tipo: la fila de stock se bloquea antes que la unidad.
		peek, err := repos.Items.GetByID(ctx, in.DeviceItemID)
		if err != nil {
			return err
		}
		if peek == nil || peek.FacilityID != facilityID {
			return domain.ErrNotFound
		}
		if _, err := repos.Stock.GetForUpdate(ctx, facilityID, peek.DeviceTypeID); err != nil {
			return err
		}
		item, err := repos.Items.GetForUpdate(ctx, in.DeviceItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Status == entity.ItemStatusBroken {
			return fmt.Errorf("%w: la unidad %s ya está en reparación", domain.ErrInvalidTransition, item.Serial)
		}
		open, err := repos.Repairs.GetOpenByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if open != nil {
			return fmt.Errorf("%w: reporte abierto %s", domain.ErrInvalidTransition, open.ID)
		}
		report = &entity.RepairReport{
			ID:           uuid.New().String(),
			FacilityID:   facilityID,
			DeviceItemID: item.ID,
			DeviceTypeID: item.DeviceTypeID,
			Description:  description,
			Status:       entity.RepairStatusReported,
			FromRented:   item.Status == entity.ItemStatusRented,
			ReportedBy:   userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := uc.ledger.Apply(ctx, repos, ledger.Operation{
			Type:         entity.MovementTypeBroken,
			FacilityID:   facilityID,
			DeviceTypeID: item.DeviceTypeID,
			Quantity:     1,
			FromRented:   report.FromRented,
			Reference:    report.ID,
			UserID:       userID,
		}); err != nil {
			return err
		}
		if err := repos.Items.UpdateStatus(ctx, item.ID, entity.ItemStatusBroken, now); err != nil {
			return err
		}
		return repos.Repairs.Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return toRepairResponse(report), nil
}

// Advance mueve el reporte hacia adelante. Al completar, la unidad vuelve a available.
func (uc *RepairUseCase) Advance(ctx context.Context, facilityID, reportID, userID, status string) (*dto.RepairReportResponse, error) {
	now := uc.now()
	var report *entity.RepairReport
	err := uc.ledger.Execute(ctx, func(ctx context.Context, repos ledger.Repos) error {
		rep, err := repos.Repairs.GetForUpdate(ctx, reportID)
		if err != nil {
			return err
		}
		if rep == nil || rep.FacilityID != facilityID {
			return domain.ErrNotFound
		}
		if !entity.CanAdvanceRepair(rep.Status, status) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, rep.Status, status)
		}
		if status == entity.RepairStatusCompleted {
			if _, err := uc.ledger.Apply(ctx, repos, ledger.Operation{
				Type:         entity.MovementTypeRepair,
				FacilityID:   facilityID,
				DeviceTypeID: rep.DeviceTypeID,
				Quantity:     1,
				Reference:    rep.ID,
				UserID:       userID,
			}); err != nil {
				return err
			}
			if _, err := repos.Items.GetForUpdate(ctx, rep.DeviceItemID); err != nil {
				return err
			}
			if err := repos.Items.UpdateStatus(ctx, rep.DeviceItemID, entity.ItemStatusAvailable, now); err != nil {
				return err
			}
			rep.CompletedAt = &now
		}
		rep.Status = status
		rep.UpdatedAt = now
		if err := repos.Repairs.Update(ctx, rep); err != nil {
			return err
		}
		report = rep
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toRepairResponse(report), nil
}

// Get obtiene un reporte de la sede.
func (uc *RepairUseCase) Get(ctx context.Context, facilityID, reportID string) (*dto.RepairReportResponse, error) {
	var rep *entity.RepairReport
	err := uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		var err error
		rep, err = repos.Repairs.GetByID(ctx, reportID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rep == nil || rep.FacilityID != facilityID {
		return nil, domain.ErrNotFound
	}
	return toRepairResponse(rep), nil
}

// List lista reportes de la sede, opcionalmente por estado.
func (uc *RepairUseCase) List(ctx context.Context, facilityID, status string, limit, offset int) (*dto.RepairReportListResponse, error) {
	var list []*entity.RepairReport
	err := uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		var err error
		list, err = repos.Repairs.List(ctx, facilityID, status, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.RepairReportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toRepairResponse(r))
	}
	return &dto.RepairReportListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toRepairResponse(r *entity.RepairReport) *dto.RepairReportResponse {
	return &dto.RepairReportResponse{
		ID:           r.ID,
		FacilityID:   r.FacilityID,
		DeviceItemID: r.DeviceItemID,
		DeviceTypeID: r.DeviceTypeID,
		Description:  r.Description,
		Status:       r.Status,
		FromRented:   r.FromRented,
		ReportedBy:   r.ReportedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		CompletedAt:  r.CompletedAt,
	}
}
