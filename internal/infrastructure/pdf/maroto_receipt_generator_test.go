package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/pdf"
)

func TestGenerateRentalReceipt_ProducesPDF(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	r := &entity.Rental{
		ID:           "3f2b8c1e-0000-4000-8000-000000000001",
		BorrowerName: "Kim Minji",
		StartDate:    start,
		DueDate:      start.AddDate(0, 0, 7),
		Status:       entity.RentalStatusActive,
		CreatedAt:    start,
	}
	facility := &entity.Facility{ID: "f-1", Name: "Seoul Center", Phone: "02-000-0000"}
	lines := []rental.ReceiptLine{
		{DeviceTypeName: "AR Glasses", Quantity: 2, Serials: []string{"AR-001", "AR-002"}},
		{DeviceTypeName: "Bone conduction", Quantity: 1},
	}

	out, err := pdf.NewMarotoReceiptGenerator().GenerateRentalReceipt(context.Background(), r, facility, lines)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
