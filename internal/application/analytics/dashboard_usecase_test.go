package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/device-rental-api/internal/application/analytics"
	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/memory"
)

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	facilities := memory.NewFacilityRepository(store)
	require.NoError(t, facilities.Create(ctx, &entity.Facility{ID: "fac-1", Name: "Gwangju"}))
	l := ledger.NewLedgerUseCase(memory.NewTxRunner(store), ledger.DefaultConfig(), zerolog.Nop())
	devices := usecase.NewDeviceUseCase(facilities, l)
	rentals := rental.NewRentalUseCase(l, facilities, nil)

	dt, err := devices.CreateType(ctx, "fac-1", dto.CreateDeviceTypeRequest{Category: entity.DeviceCategoryARGlasses, Name: "AR"})
	require.NoError(t, err)
	_, err = l.AdjustStock(ctx, ledger.AdjustInput{FacilityID: "fac-1", DeviceTypeID: dt.ID, NewTotal: 3, Reason: "alta inicial"})
	require.NoError(t, err)
	_, err = devices.CreateType(ctx, "fac-1", dto.CreateDeviceTypeRequest{Category: entity.DeviceCategoryOther, Name: "Empty"})
	require.NoError(t, err)

	start := time.Now().AddDate(0, 0, -5)
	_, err = rentals.Create(ctx, "fac-1", "u", dto.CreateRentalRequest{
		BorrowerName: "Park", StartDate: start, DueDate: start.AddDate(0, 0, 1),
		Lines: []dto.RentalLineRequest{{DeviceTypeID: dt.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	out, err := analytics.NewDashboardUseCase(memory.NewDashboardRepository(store), l).GetSummary(ctx, "fac-1")
	require.NoError(t, err)

	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 1, out.Rented)
	assert.Equal(t, 1, out.ActiveRentals)
	assert.Equal(t, 1, out.OverdueRentals)
	assert.Equal(t, 0, out.OpenRepairs)
	assert.Equal(t, "33.33", out.UtilizationPct.StringFixed(2))
	require.Len(t, out.ByType, 2)
	assert.Equal(t, "AR", out.ByType[0].DeviceTypeName)
	assert.Equal(t, "33.33", out.ByType[0].UtilizationPct.StringFixed(2))
	assert.True(t, out.ByType[1].UtilizationPct.IsZero(), "total 0 no divide")
}
