// Package analytics arma el panel de una sede: contadores por tipo, porcentaje de uso,
// reparaciones abiertas y alquileres activos/vencidos.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen de una sede.
//
// Fuente de datos: DashboardRepository (uso por tipo) y los repos del libro vía View
// (conteos de alquileres y reparaciones). Solo lecturas.
type DashboardUseCase struct {
	dashboardRepo repository.DashboardRepository
	ledger        *ledger.LedgerUseCase
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(dashboardRepo repository.DashboardRepository, ledgerUC *ledger.LedgerUseCase) *DashboardUseCase {
	return &DashboardUseCase{dashboardRepo: dashboardRepo, ledger: ledgerUC, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO de la sede.
//
// Tres consultas en paralelo:
//  1. UtilizationByType     → ByType + totales de la sede
//  2. Rentals.CountActive   → ActiveRentals + OverdueRentals
//  3. Repairs.CountOpen     → OpenRepairs
func (uc *DashboardUseCase) GetSummary(ctx context.Context, facilityID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	type utilResult struct {
		rows []repository.UtilizationRow
		err  error
	}
	type rentalsResult struct {
		active, overdue int
		err             error
	}
	type repairsResult struct {
		open int
		err  error
	}

	utilCh := make(chan utilResult, 1)
	rentalsCh := make(chan rentalsResult, 1)
	repairsCh := make(chan repairsResult, 1)

	go func() {
		rows, err := uc.dashboardRepo.UtilizationByType(ctx, facilityID)
		utilCh <- utilResult{rows, err}
	}()
	go func() {
		var res rentalsResult
		res.err = uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
			var err error
			res.active, res.overdue, err = repos.Rentals.CountActive(ctx, facilityID, now)
			return err
		})
		rentalsCh <- res
	}()
	go func() {
		var res repairsResult
		res.err = uc.ledger.View(ctx, func(ctx context.Context, repos ledger.Repos) error {
			var err error
			res.open, err = repos.Repairs.CountOpen(ctx, facilityID)
			return err
		})
		repairsCh <- res
	}()

	util := <-utilCh
	rentals := <-rentalsCh
	repairs := <-repairsCh

	if util.err != nil {
		return nil, fmt.Errorf("dashboard: uso por tipo: %w", util.err)
	}
	if rentals.err != nil {
		return nil, fmt.Errorf("dashboard: alquileres: %w", rentals.err)
	}
	if repairs.err != nil {
		return nil, fmt.Errorf("dashboard: reparaciones: %w", repairs.err)
	}

	out := &dto.DashboardSummaryDTO{
		FacilityID:     facilityID,
		OpenRepairs:    repairs.open,
		ActiveRentals:  rentals.active,
		OverdueRentals: rentals.overdue,
		ByType:         make([]dto.DeviceUtilizationDTO, 0, len(util.rows)),
	}
	for _, r := range util.rows {
		out.Total += r.Total
		out.Available += r.Available
		out.Rented += r.Rented
		out.Broken += r.Broken
		out.ByType = append(out.ByType, dto.DeviceUtilizationDTO{
			DeviceTypeID:   r.DeviceTypeID,
			DeviceTypeName: r.DeviceTypeName,
			Total:          r.Total,
			Available:      r.Available,
			Rented:         r.Rented,
			Broken:         r.Broken,
			UtilizationPct: r.UtilizationPct,
		})
	}
	out.UtilizationPct = utilization(out.Rented, out.Total)
	return out, nil
}

// utilization rented / total * 100 redondeado a 2 decimales; 0 si total es 0.
func utilization(rented, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(rented)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
