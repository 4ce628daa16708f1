package dto

import "time"

// StockQuantityRequest cuerpo de rent/return/repair sobre un (sede, tipo).
type StockQuantityRequest struct {
	Quantity  int    `json:"quantity"`
	Reference string `json:"reference"`
}

// ReportBrokenRequest cuerpo de broken; FromRented mueve desde rented en lugar de available.
type ReportBrokenRequest struct {
	Quantity   int    `json:"quantity"`
	FromRented bool   `json:"from_rented"`
	Reference  string `json:"reference"`
}

// AdjustStockRequest override administrativo del total.
type AdjustStockRequest struct {
	NewTotal int    `json:"new_total"`
	Reason   string `json:"reason"`
}

// StockResponse contadores de un (sede, tipo).
type StockResponse struct {
	FacilityID   string    `json:"facility_id"`
	DeviceTypeID string    `json:"device_type_id"`
	Total        int       `json:"total"`
	Available    int       `json:"available"`
	Rented       int       `json:"rented"`
	Broken       int       `json:"broken"`
	Version      int       `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RecountResponse resultado de RecountStock.
type RecountResponse struct {
	Before  StockResponse `json:"before"`
	After   StockResponse `json:"after"`
	Changed bool          `json:"changed"`
}

// StockMovementResponse entrada del diario.
type StockMovementResponse struct {
	ID           string    `json:"id"`
	DeviceTypeID string    `json:"device_type_id"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Total        int       `json:"total"`
	Available    int       `json:"available"`
	Rented       int       `json:"rented"`
	Broken       int       `json:"broken"`
	Reference    string    `json:"reference,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockMovementListResponse lista paginada del diario.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
