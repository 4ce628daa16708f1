package repository

import (
	"context"
	"time"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// RentalFilter filtros para listar alquileres.
type RentalFilter struct {
	FacilityID string
	Status     string
	// OverdueAt, si no es cero, deja solo activos con vencimiento anterior a esa fecha.
	OverdueAt time.Time
	Limit     int
	Offset    int
}

// RentalRepository define el puerto de persistencia para alquileres y sus líneas.
type RentalRepository interface {
	// Create persiste el alquiler y todas sus líneas.
	Create(ctx context.Context, rental *entity.Rental) error
	GetByID(ctx context.Context, id string) (*entity.Rental, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Rental, error)
	MarkReturned(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter RentalFilter) ([]*entity.Rental, error)
	// CountActive retorna alquileres activos y, de ellos, los vencidos a la fecha now.
	CountActive(ctx context.Context, facilityID string, now time.Time) (active, overdue int, err error)
}
