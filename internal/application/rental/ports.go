package rental

import (
	"context"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// ReceiptLine línea del comprobante con el nombre del tipo ya resuelto.
type ReceiptLine struct {
	DeviceTypeName string
	Quantity       int
	Serials        []string
}

// ReceiptGenerator genera el comprobante de préstamo (PDF) que se entrega al usuario final.
type ReceiptGenerator interface {
	GenerateRentalReceipt(ctx context.Context, rental *entity.Rental, facility *entity.Facility, lines []ReceiptLine) ([]byte, error)
}
