package dto

import "time"

// CreateDeviceTypeRequest entrada para crear un tipo de dispositivo en una sede.
type CreateDeviceTypeRequest struct {
	Category string `json:"category" validate:"required,oneof=AR_GLASSES BONE_CONDUCTION SMARTPHONE OTHER"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

// DeviceTypeResponse salida de un tipo de dispositivo.
type DeviceTypeResponse struct {
	ID         string    `json:"id"`
	FacilityID string    `json:"facility_id"`
	Category   string    `json:"category"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// RegisterDeviceItemRequest alta de una unidad física.
type RegisterDeviceItemRequest struct {
	DeviceTypeID string `json:"device_type_id" validate:"required,uuid"`
	Serial       string `json:"serial" validate:"required,min=1,max=100"`
	Note         string `json:"note"`
}

// DeviceItemResponse salida de una unidad física.
type DeviceItemResponse struct {
	ID           string    `json:"id"`
	FacilityID   string    `json:"facility_id"`
	DeviceTypeID string    `json:"device_type_id"`
	Serial       string    `json:"serial"`
	Status       string    `json:"status"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeviceItemListResponse lista paginada de unidades.
type DeviceItemListResponse struct {
	Items []DeviceItemResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
