package entity

import "time"

// Estados de un reporte de reparación.
const (
	RepairStatusReported   = "reported"
	RepairStatusInProgress = "in_progress"
	RepairStatusCompleted  = "completed"
)

// RepairReport seguimiento de la reparación de una unidad.
// Mientras está reported o in_progress la unidad cuenta como broken.
type RepairReport struct {
	ID           string
	FacilityID   string
	DeviceItemID string
	DeviceTypeID string
	Description  string
	Status       string
	FromRented   bool // la unidad estaba prestada cuando se reportó
	ReportedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// CanAdvanceRepair indica si la transición from → to está permitida (solo hacia adelante).
func CanAdvanceRepair(from, to string) bool {
	switch from {
	case RepairStatusReported:
		return to == RepairStatusInProgress || to == RepairStatusCompleted
	case RepairStatusInProgress:
		return to == RepairStatusCompleted
	}
	return false
}

// IsOpen indica si el reporte aún mantiene la unidad fuera de servicio.
func (r *RepairReport) IsOpen() bool {
	return r.Status == RepairStatusReported || r.Status == RepairStatusInProgress
}
