package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin           = "admin"            // consola de administración, todas las sedes
	RoleFacilityManager = "facility_manager" // consola de una sede
)

// User representa un usuario del sistema. FacilityID vacío para administradores.
type User struct {
	ID           string
	FacilityID   string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleFacilityManager
}
