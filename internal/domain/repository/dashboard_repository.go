package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// UtilizationRow contadores de un tipo con su porcentaje de uso (rented / total * 100).
type UtilizationRow struct {
	DeviceTypeID   string
	DeviceTypeName string
	Total          int
	Available      int
	Rented         int
	Broken         int
	UtilizationPct decimal.Decimal
}

// DashboardRepository consultas read-only para el panel de una sede.
type DashboardRepository interface {
	UtilizationByType(ctx context.Context, facilityID string) ([]UtilizationRow, error)
}
