// Package rental abre y cierra alquileres. Cada alquiler mueve varias filas del libro
// en una sola transacción. Orden de bloqueo: alquiler, filas de stock por device_type_id,
// unidades por ID. Reparaciones siguen el mismo orden.
package rental

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

// RentalUseCase casos de uso de alquileres.
type RentalUseCase struct {
	ledger     *ledger.LedgerUseCase
	facilities repository.FacilityRepository
	receipts   ReceiptGenerator
	now        func() time.Time
}

// NewRentalUseCase construye el caso de uso. receipts puede ser nil si no se exponen comprobantes.
func NewRentalUseCase(ledgerUC *ledger.LedgerUseCase, facilities repository.FacilityRepository, receipts ReceiptGenerator) *RentalUseCase {
	return &RentalUseCase{ledger: ledgerUC, facilities: facilities, receipts: receipts, now: time.Now}
}

// Create abre un alquiler: descuenta cada línea del libro, marca las unidades nombradas
// como rented y persiste el alquiler, todo o nada.
func (uc *RentalUseCase) Create(ctx context.Context, facilityID, userID string, in dto.CreateRentalRequest) (*dto.RentalResponse, error) {
	lines, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	rental := &entity.Rental{
		ID:            uuid.New().String(),
		FacilityID:    facilityID,
		BorrowerName:  strings.TrimSpace(in.BorrowerName),
		BorrowerPhone: strings.TrimSpace(in.BorrowerPhone),
		Note:          in.Note,
		StartDate:     in.StartDate,
		DueDate:       in.DueDate,
		Status:        entity.RentalStatusActive,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Lines:         lines,
	}
	for i := range rental.Lines {
		rental.Lines[i].RentalID = rental.ID
	}

	err = uc.ledger.Execute(ctx, func(ctx context.Context, repos ledger.Repos) error {
		for _, line := range rental.Lines {
			if err := checkType(ctx, repos, facilityID, line.DeviceTypeID); err != nil {
				return err
			}
			if _, err := uc.ledger.Apply(ctx, repos, ledger.Operation{
				Type:         entity.MovementTypeRent,
				FacilityID:   facilityID,
				DeviceTypeID: line.DeviceTypeID,
				Quantity:     line.Quantity,
				Reference:    rental.ID,
				UserID:       userID,
			}); err != nil {
				return err
			}
		}
		if err := markItems(ctx, repos, facilityID, rental.Lines, entity.ItemStatusAvailable, entity.ItemStatusRented, now); err != nil {
			return err
		}
		return repos.Rentals.Create(ctx, rental)
	})
	if err != nil {
		return nil, err
	}
	return toRentalResponse(rental, now), nil
}

// Return cierra un alquiler activo devolviendo todas sus líneas al libro.
// Las unidades que se reportaron rotas durante el préstamo ya salieron de rented
// y no se devuelven. Un alquiler ya cerrado retorna ErrAlreadyReturned.
func (uc *RentalUseCase) Return(ctx context.Context, facilityID, rentalID, userID string) (*dto.RentalResponse, error) {
	var out *entity.Rental
	now := uc.now()
	err := uc.ledger.Execute(ctx, func(ctx context.Context, repos ledger.Repos) error {
		rental, err := repos.Rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental == nil || rental.FacilityID != facilityID {
			return domain.ErrNotFound
		}
		if rental.Status == entity.RentalStatusReturned {
			return domain.ErrAlreadyReturned
		}
		lines := append([]entity.RentalLine(nil), rental.Lines...)
		sort.Slice(lines, func(i, j int) bool { return lines[i].DeviceTypeID < lines[j].DeviceTypeID })
		// Filas del libro antes que unidades, mismo orden que Create.
		for _, line := range lines {
			if _, err := repos.Stock.GetForUpdate(ctx, facilityID, line.DeviceTypeID); err != nil {
				return err
			}
		}
		for _, line := range lines {
			qty := line.Quantity
			if len(line.ItemIDs) > 0 {
				qty, err = returnItems(ctx, repos, line.ItemIDs, now)
				if err != nil {
					return err
				}
			}
			if qty == 0 {
				continue
			}
			if _, err := uc.ledger.Apply(ctx, repos, ledger.Operation{
				Type:         entity.MovementTypeReturn,
				FacilityID:   facilityID,
				DeviceTypeID: line.DeviceTypeID,
				Quantity:     qty,
				Reference:    rental.ID,
				UserID:       userID,
			}); err != nil {
				return err
			}
		}
		if err := repos.Rentals.MarkReturned(ctx, rental.ID, now); err != nil {
			return err
		}
		rental.Status = entity.RentalStatusReturned
		rental.ReturnedAt = &now
		rental.UpdatedAt = now
		out = rental
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toRentalResponse(out, now), nil
}

// Get obtiene un alquiler de la sede.
func (uc *RentalUseCase) Get(ctx context.Context, facilityID, rentalID string) (*dto.RentalResponse, error) {
	rental, err := uc.load(ctx, facilityID, rentalID)
	if err != nil {
		return nil, err
	}
	return toRentalResponse(rental, uc.now()), nil
}

// List lista alquileres de la sede, opcionalmente por estado. overdueOnly filtra los vencidos.
func (uc *RentalUseCase) List(ctx context.Context, filter repository.RentalFilter, overdueOnly bool) (*dto.RentalListResponse, error) {
	now := uc.now()
	if overdueOnly {
		filter.OverdueAt = now
	}
	var list []*entity.Rental
	err := uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		var err error
		list, err = repos.Rentals.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.RentalResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toRentalResponse(r, now))
	}
	return &dto.RentalListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Receipt genera el comprobante PDF del alquiler y su nombre de archivo.
func (uc *RentalUseCase) Receipt(ctx context.Context, facilityID, rentalID string) ([]byte, string, error) {
	if uc.receipts == nil {
		return nil, "", fmt.Errorf("rental: generador de comprobantes no configurado")
	}
	rental, err := uc.load(ctx, facilityID, rentalID)
	if err != nil {
		return nil, "", err
	}
	facility, err := uc.facilities.GetByID(ctx, facilityID)
	if err != nil {
		return nil, "", fmt.Errorf("rental: obtener sede: %w", err)
	}
	if facility == nil {
		return nil, "", domain.ErrNotFound
	}
	lines := make([]ReceiptLine, 0, len(rental.Lines))
	err = uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		for _, l := range rental.Lines {
			rl := ReceiptLine{DeviceTypeName: l.DeviceTypeID, Quantity: l.Quantity}
			dt, err := repos.DeviceTypes.GetByID(ctx, l.DeviceTypeID)
			if err != nil {
				return err
			}
			if dt != nil {
				rl.DeviceTypeName = dt.Name
			}
			for _, id := range l.ItemIDs {
				it, err := repos.Items.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if it != nil {
					rl.Serials = append(rl.Serials, it.Serial)
				}
			}
			lines = append(lines, rl)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.receipts.GenerateRentalReceipt(ctx, rental, facility, lines)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("rental-%s.pdf", rental.ID[:8]), nil
}

func (uc *RentalUseCase) load(ctx context.Context, facilityID, rentalID string) (*entity.Rental, error) {
	var rental *entity.Rental
	err := uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
		var err error
		rental, err = repos.Rentals.GetByID(ctx, rentalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rental == nil || rental.FacilityID != facilityID {
		return nil, domain.ErrNotFound
	}
	return rental, nil
}

// validateCreate revisa la entrada y devuelve las líneas ordenadas por tipo.
func validateCreate(in dto.CreateRentalRequest) ([]entity.RentalLine, error) {
	if strings.TrimSpace(in.BorrowerName) == "" {
		return nil, fmt.Errorf("%w: borrower_name requerido", domain.ErrInvalidInput)
	}
	if in.StartDate.IsZero() || in.DueDate.IsZero() || in.DueDate.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: rango de fechas inválido", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: al menos una línea", domain.ErrInvalidInput)
	}
	seenType := make(map[string]bool, len(in.Lines))
	seenItem := make(map[string]bool)
	lines := make([]entity.RentalLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.DeviceTypeID == "" || seenType[l.DeviceTypeID] {
			return nil, fmt.Errorf("%w: device_type_id vacío o repetido", domain.ErrInvalidInput)
		}
		seenType[l.DeviceTypeID] = true
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if len(l.ItemIDs) > 0 && len(l.ItemIDs) != l.Quantity {
			return nil, fmt.Errorf("%w: item_ids debe tener quantity elementos", domain.ErrInvalidInput)
		}
		for _, id := range l.ItemIDs {
			if seenItem[id] {
				return nil, fmt.Errorf("%w: unidad %s repetida", domain.ErrInvalidInput, id)
			}
			seenItem[id] = true
		}
		ids := append([]string(nil), l.ItemIDs...)
		sort.Strings(ids)
		lines = append(lines, entity.RentalLine{DeviceTypeID: l.DeviceTypeID, Quantity: l.Quantity, ItemIDs: ids})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].DeviceTypeID < lines[j].DeviceTypeID })
	return lines, nil
}

func checkType(ctx context.Context, repos ledger.Repos, facilityID, deviceTypeID string) error {
	dt, err := repos.DeviceTypes.GetByID(ctx, deviceTypeID)
	if err != nil {
		return err
	}
	if dt == nil || dt.FacilityID != facilityID {
		return fmt.Errorf("%w: tipo %s", domain.ErrNotFound, deviceTypeID)
	}
	return nil
}

// markItems bloquea y cambia de estado las unidades nombradas en las líneas.
func markItems(ctx context.Context, repos ledger.Repos, facilityID string, lines []entity.RentalLine, from, to string, at time.Time) error {
	for _, line := range lines {
		for _, id := range line.ItemIDs {
			it, err := repos.Items.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if it == nil || it.FacilityID != facilityID || it.DeviceTypeID != line.DeviceTypeID {
				return fmt.Errorf("%w: unidad %s", domain.ErrNotFound, id)
			}
			if it.Status != from {
				return fmt.Errorf("%w: unidad %s en estado %s", domain.ErrInsufficientStock, it.Serial, it.Status)
			}
			if err := repos.Items.UpdateStatus(ctx, id, to, at); err != nil {
				return err
			}
		}
	}
	return nil
}

// returnItems devuelve a available las unidades aún prestadas y retorna cuántas fueron.
func returnItems(ctx context.Context, repos ledger.Repos, ids []string, at time.Time) (int, error) {
	n := 0
	for _, id := range ids {
		it, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return 0, err
		}
		if it == nil || it.Status != entity.ItemStatusRented {
			continue
		}
		if err := repos.Items.UpdateStatus(ctx, id, entity.ItemStatusAvailable, at); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

func toRentalResponse(r *entity.Rental, now time.Time) *dto.RentalResponse {
	lines := make([]dto.RentalLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, dto.RentalLineResponse{DeviceTypeID: l.DeviceTypeID, Quantity: l.Quantity, ItemIDs: l.ItemIDs})
	}
	return &dto.RentalResponse{
		ID:            r.ID,
		FacilityID:    r.FacilityID,
		BorrowerName:  r.BorrowerName,
		BorrowerPhone: r.BorrowerPhone,
		Note:          r.Note,
		StartDate:     r.StartDate,
		DueDate:       r.DueDate,
		Status:        r.Status,
		Overdue:       r.IsOverdue(now),
		ReturnedAt:    r.ReturnedAt,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		Lines:         lines,
	}
}
