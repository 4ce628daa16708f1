package entity

import "time"

// Estados de una unidad física.
const (
	ItemStatusAvailable = "available"
	ItemStatusRented    = "rented"
	ItemStatusBroken    = "broken" // reportada o en reparación
)

// DeviceItem unidad física identificada por serial dentro de una sede.
type DeviceItem struct {
	ID           string
	FacilityID   string
	DeviceTypeID string
	Serial       string
	Status       string
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
