package dto

import "time"

// RentalLineRequest una línea del alquiler. ItemIDs opcional; si se envía, len == Quantity.
type RentalLineRequest struct {
	DeviceTypeID string   `json:"device_type_id" validate:"required,uuid"`
	Quantity     int      `json:"quantity"`
	ItemIDs      []string `json:"item_ids"`
}

// CreateRentalRequest entrada para abrir un alquiler.
type CreateRentalRequest struct {
	BorrowerName  string              `json:"borrower_name" validate:"required"`
	BorrowerPhone string              `json:"borrower_phone"`
	Note          string              `json:"note"`
	StartDate     time.Time           `json:"start_date" validate:"required"`
	DueDate       time.Time           `json:"due_date" validate:"required"`
	Lines         []RentalLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// RentalLineResponse línea del alquiler.
type RentalLineResponse struct {
	DeviceTypeID string   `json:"device_type_id"`
	Quantity     int      `json:"quantity"`
	ItemIDs      []string `json:"item_ids,omitempty"`
}

// RentalResponse salida de un alquiler.
type RentalResponse struct {
	ID            string               `json:"id"`
	FacilityID    string               `json:"facility_id"`
	BorrowerName  string               `json:"borrower_name"`
	BorrowerPhone string               `json:"borrower_phone,omitempty"`
	Note          string               `json:"note,omitempty"`
	StartDate     time.Time            `json:"start_date"`
	DueDate       time.Time            `json:"due_date"`
	Status        string               `json:"status"`
	Overdue       bool                 `json:"overdue"`
	ReturnedAt    *time.Time           `json:"returned_at,omitempty"`
	CreatedBy     string               `json:"created_by,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	Lines         []RentalLineResponse `json:"lines"`
}

// RentalListResponse lista paginada de alquileres.
type RentalListResponse struct {
	Items []RentalResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
