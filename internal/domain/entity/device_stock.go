package entity

import "time"

// DeviceStock contadores agregados por (sede, tipo de dispositivo).
// Invariante: Available + Rented + Broken == Total, todos >= 0.
type DeviceStock struct {
	FacilityID   string
	DeviceTypeID string
	Total        int
	Available    int
	Rented       int
	Broken       int
	Version      int
	UpdatedAt    time.Time
}

// Consistent verifica el invariante de suma y no negatividad.
func (s DeviceStock) Consistent() bool {
	if s.Total < 0 || s.Available < 0 || s.Rented < 0 || s.Broken < 0 {
		return false
	}
	return s.Available+s.Rented+s.Broken == s.Total
}
