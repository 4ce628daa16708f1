package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/facilities/:facility_id/dashboard.
type DashboardSummaryDTO struct {
	FacilityID string `json:"facility_id"`

	// Totales de la sede (suma de todos los tipos)
	Total     int `json:"total"`
	Available int `json:"available"`
	Rented    int `json:"rented"`
	Broken    int `json:"broken"`

	// rented / total * 100 de toda la sede
	UtilizationPct decimal.Decimal `json:"utilization_pct"`

	OpenRepairs    int `json:"open_repairs"`
	ActiveRentals  int `json:"active_rentals"`
	OverdueRentals int `json:"overdue_rentals"`

	ByType []DeviceUtilizationDTO `json:"by_type"`
}

// DeviceUtilizationDTO contadores y uso de un tipo de dispositivo.
type DeviceUtilizationDTO struct {
	DeviceTypeID   string          `json:"device_type_id"`
	DeviceTypeName string          `json:"device_type_name"`
	Total          int             `json:"total"`
	Available      int             `json:"available"`
	Rented         int             `json:"rented"`
	Broken         int             `json:"broken"`
	UtilizationPct decimal.Decimal `json:"utilization_pct"`
}
