package entity

import "time"

// Facility representa un centro (sede) del programa de préstamo de dispositivos.
type Facility struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
