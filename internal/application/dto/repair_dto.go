package dto

import "time"

// OpenRepairRequest reporte de falla de una unidad.
type OpenRepairRequest struct {
	DeviceItemID string `json:"device_item_id" validate:"required,uuid"`
	Description  string `json:"description" validate:"required"`
}

// AdvanceRepairRequest avance de estado del reporte (in_progress | completed).
type AdvanceRepairRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed"`
}

// RepairReportResponse salida de un reporte de reparación.
type RepairReportResponse struct {
	ID           string     `json:"id"`
	FacilityID   string     `json:"facility_id"`
	DeviceItemID string     `json:"device_item_id"`
	DeviceTypeID string     `json:"device_type_id"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	FromRented   bool       `json:"from_rented"`
	ReportedBy   string     `json:"reported_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RepairReportListResponse lista paginada de reportes.
type RepairReportListResponse struct {
	Items []RepairReportResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}
