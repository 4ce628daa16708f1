package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/ledger"
)

func stock(total, available, rented, broken int) *entity.DeviceStock {
	return &entity.DeviceStock{Total: total, Available: available, Rented: rented, Broken: broken}
}

func counters(s *entity.DeviceStock) [4]int {
	return [4]int{s.Total, s.Available, s.Rented, s.Broken}
}

// Escenario de referencia: {10,3,6,1} alquila 3 → {10,0,9,1}; luego alquilar 1 falla.
func TestRent_EscenarioARGlasses(t *testing.T) {
	s := stock(10, 3, 6, 1)

	require.NoError(t, ledger.Rent(s, 3))
	assert.Equal(t, [4]int{10, 0, 9, 1}, counters(s))

	err := ledger.Rent(s, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, [4]int{10, 0, 9, 1}, counters(s), "el stock no debe cambiar tras un fallo")
	assert.True(t, s.Consistent())
}

func TestRentThenReturn_RestauraEstado(t *testing.T) {
	s := stock(8, 5, 2, 1)
	before := counters(s)

	require.NoError(t, ledger.Rent(s, 4))
	require.NoError(t, ledger.Return(s, 4))

	assert.Equal(t, before, counters(s))
}

func TestReturn_OverReturn(t *testing.T) {
	s := stock(5, 3, 2, 0)
	err := ledger.Return(s, 3)
	assert.ErrorIs(t, err, domain.ErrOverReturn)
	assert.Equal(t, [4]int{5, 3, 2, 0}, counters(s))
}

func TestCantidadInvalida(t *testing.T) {
	ops := map[string]func(s *entity.DeviceStock, q int) error{
		"rent":     ledger.Rent,
		"return":   ledger.Return,
		"repair":   ledger.CompleteRepair,
		"register": ledger.Register,
		"broken":   func(s *entity.DeviceStock, q int) error { return ledger.ReportBroken(s, q, false) },
	}
	for name, op := range ops {
		for _, q := range []int{0, -1, -10} {
			s := stock(4, 2, 1, 1)
			err := op(s, q)
			assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "%s(%d)", name, q)
			assert.Equal(t, [4]int{4, 2, 1, 1}, counters(s), "%s(%d)", name, q)
		}
	}
}

func TestReportBrokenThenRepair_RestauraReparto(t *testing.T) {
	s := stock(6, 4, 1, 1)

	require.NoError(t, ledger.ReportBroken(s, 2, false))
	assert.Equal(t, [4]int{6, 2, 1, 3}, counters(s))

	require.NoError(t, ledger.CompleteRepair(s, 2))
	assert.Equal(t, [4]int{6, 4, 1, 1}, counters(s))
}

func TestReportBroken_DesdeAlquilado(t *testing.T) {
	s := stock(3, 0, 3, 0)

	require.NoError(t, ledger.ReportBroken(s, 1, true))
	assert.Equal(t, [4]int{3, 0, 2, 1}, counters(s))

	err := ledger.ReportBroken(s, 1, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, [4]int{3, 0, 2, 1}, counters(s))
}

func TestCompleteRepair_SinUnidadesRotas(t *testing.T) {
	s := stock(2, 2, 0, 0)
	assert.ErrorIs(t, ledger.CompleteRepair(s, 1), domain.ErrInsufficientStock)
}

func TestAdjust(t *testing.T) {
	t.Run("razón vacía", func(t *testing.T) {
		s := stock(10, 3, 6, 1)
		assert.ErrorIs(t, ledger.Adjust(s, 12, "   "), domain.ErrInvalidInput)
		assert.Equal(t, [4]int{10, 3, 6, 1}, counters(s))
	})
	t.Run("recalcula disponible", func(t *testing.T) {
		s := stock(10, 3, 6, 1)
		require.NoError(t, ledger.Adjust(s, 12, "compra de 2 unidades"))
		assert.Equal(t, [4]int{12, 5, 6, 1}, counters(s))
	})
	t.Run("disponible negativo", func(t *testing.T) {
		s := stock(10, 3, 6, 1)
		assert.ErrorIs(t, ledger.Adjust(s, 6, "baja"), domain.ErrInvalidAdjustment)
		assert.Equal(t, [4]int{10, 3, 6, 1}, counters(s))
	})
	t.Run("total negativo", func(t *testing.T) {
		s := stock(0, 0, 0, 0)
		assert.ErrorIs(t, ledger.Adjust(s, -1, "error"), domain.ErrInvalidAdjustment)
	})
}

func TestRecount(t *testing.T) {
	s := stock(10, 10, 0, 0)
	items := []*entity.DeviceItem{
		{Status: entity.ItemStatusAvailable},
		{Status: entity.ItemStatusRented},
		{Status: entity.ItemStatusRented},
		{Status: entity.ItemStatusBroken},
	}
	assert.True(t, ledger.Recount(s, items))
	assert.Equal(t, [4]int{4, 1, 2, 1}, counters(s))

	empty := stock(3, 3, 0, 0)
	assert.False(t, ledger.Recount(empty, nil))
	assert.Equal(t, [4]int{3, 3, 0, 0}, counters(empty))
}

// Secuencia pseudoaleatoria de operaciones: el invariante debe mantenerse siempre.
func TestInvarianteEnSecuencia(t *testing.T) {
	s := stock(0, 0, 0, 0)
	require.NoError(t, ledger.Adjust(s, 7, "inicial"))
	seed := uint32(42)
	next := func(n int) int {
		seed = seed*1664525 + 1013904223
		return int(seed>>16) % n
	}
	for i := 0; i < 500; i++ {
		q := next(3) + 1
		switch next(5) {
		case 0:
			_ = ledger.Rent(s, q)
		case 1:
			_ = ledger.Return(s, q)
		case 2:
			_ = ledger.ReportBroken(s, q, next(2) == 0)
		case 3:
			_ = ledger.CompleteRepair(s, q)
		case 4:
			_ = ledger.Adjust(s, s.Total+next(3)-1, "ajuste")
		}
		require.True(t, s.Consistent(), "paso %d: %+v", i, *s)
	}
}
