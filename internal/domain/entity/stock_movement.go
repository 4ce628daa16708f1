package entity

import "time"

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeRent     = "RENT"
	MovementTypeReturn   = "RETURN"
	MovementTypeBroken   = "BROKEN"
	MovementTypeRepair   = "REPAIR"
	MovementTypeAdjust   = "ADJUST"
	MovementTypeRegister = "REGISTER"
)

// StockMovement registro inmutable de cada mutación confirmada sobre DeviceStock.
// Total/Available/Rented/Broken son los contadores resultantes.
type StockMovement struct {
	ID           string
	FacilityID   string
	DeviceTypeID string
	Type         string
	Quantity     int
	Total        int
	Available    int
	Rented       int
	Broken       int
	Reference    string // id de alquiler o reparación
	Reason       string
	CreatedBy    string
	CreatedAt    time.Time
}
