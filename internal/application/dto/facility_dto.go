package dto

import "time"

// CreateFacilityRequest entrada para crear una sede.
type CreateFacilityRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// UpdateFacilityRequest entrada para actualizar una sede.
type UpdateFacilityRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// FacilityResponse salida de una sede.
type FacilityResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FacilityListResponse lista paginada de sedes.
type FacilityListResponse struct {
	Items []FacilityResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
