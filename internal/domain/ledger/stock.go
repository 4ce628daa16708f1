// Package ledger contiene las transiciones puras sobre los contadores de DeviceStock.
// Cada función valida antes de mutar: si retorna error, el stock queda intacto.
package ledger

import (
	"strings"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// Rent mueve q unidades de available a rented.
func Rent(s *entity.DeviceStock, q int) error {
	if q <= 0 {
		return domain.ErrInvalidQuantity
	}
	if s.Available < q {
		return domain.ErrInsufficientStock
	}
	s.Available -= q
	s.Rented += q
	return nil
}

// Return mueve q unidades de rented a available.
func Return(s *entity.DeviceStock, q int) error {
	if q <= 0 {
		return domain.ErrInvalidQuantity
	}
	if s.Rented < q {
		return domain.ErrOverReturn
	}
	s.Rented -= q
	s.Available += q
	return nil
}

// ReportBroken mueve q unidades a broken desde available, o desde rented si la unidad
// dañada estaba prestada.
func ReportBroken(s *entity.DeviceStock, q int, fromRented bool) error {
	if q <= 0 {
		return domain.ErrInvalidQuantity
	}
	if fromRented {
		if s.Rented < q {
			return domain.ErrInsufficientStock
		}
		s.Rented -= q
	} else {
		if s.Available < q {
			return domain.ErrInsufficientStock
		}
		s.Available -= q
	}
	s.Broken += q
	return nil
}

// CompleteRepair mueve q unidades de broken a available.
func CompleteRepair(s *entity.DeviceStock, q int) error {
	if q <= 0 {
		return domain.ErrInvalidQuantity
	}
	if s.Broken < q {
		return domain.ErrInsufficientStock
	}
	s.Broken -= q
	s.Available += q
	return nil
}

// Adjust fija un nuevo total y recalcula available = newTotal - rented - broken.
// reason es obligatorio (texto de justificación del administrador).
func Adjust(s *entity.DeviceStock, newTotal int, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ErrInvalidInput
	}
	available := newTotal - s.Rented - s.Broken
	if newTotal < 0 || available < 0 {
		return domain.ErrInvalidAdjustment
	}
	s.Total = newTotal
	s.Available = available
	return nil
}

// Register incorpora q unidades nuevas, disponibles de inmediato.
func Register(s *entity.DeviceStock, q int) error {
	if q <= 0 {
		return domain.ErrInvalidQuantity
	}
	s.Total += q
	s.Available += q
	return nil
}

// Recount reconstruye los contadores a partir del estado de cada unidad.
// Retorna false si no hay unidades registradas (los contadores no se tocan).
func Recount(s *entity.DeviceStock, items []*entity.DeviceItem) bool {
	if len(items) == 0 {
		return false
	}
	var available, rented, broken int
	for _, it := range items {
		switch it.Status {
		case entity.ItemStatusRented:
			rented++
		case entity.ItemStatusBroken:
			broken++
		default:
			available++
		}
	}
	s.Available = available
	s.Rented = rented
	s.Broken = broken
	s.Total = available + rented + broken
	return true
}
