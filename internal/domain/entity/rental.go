package entity

import "time"

// Estados de un alquiler.
const (
	RentalStatusActive   = "active"
	RentalStatusReturned = "returned"
)

// Rental préstamo de uno o más dispositivos a un usuario final por un rango de fechas.
type Rental struct {
	ID            string
	FacilityID    string
	BorrowerName  string
	BorrowerPhone string
	Note          string
	StartDate     time.Time
	DueDate       time.Time
	Status        string
	ReturnedAt    *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []RentalLine
}

// RentalLine cantidad de un tipo de dispositivo dentro de un alquiler.
// ItemIDs es opcional: si se informa, len(ItemIDs) == Quantity.
type RentalLine struct {
	RentalID     string
	DeviceTypeID string
	Quantity     int
	ItemIDs      []string
}

// IsOverdue indica si el alquiler sigue activo después de la fecha de devolución.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.Status == RentalStatusActive && now.After(r.DueDate)
}
