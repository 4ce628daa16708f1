package repair_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/application/repair"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/memory"
)

const user = "user-1"

type fixture struct {
	ledger     *ledger.LedgerUseCase
	devices    *usecase.DeviceUseCase
	rentals    *rental.RentalUseCase
	repairs    *repair.RepairUseCase
	facilityID string
	typeID     string
	items      []string
}

func newFixture(t *testing.T, units int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	facilities := memory.NewFacilityRepository(store)
	fac := &entity.Facility{ID: "fac-1", Name: "Busan", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, facilities.Create(ctx, fac))
	l := ledger.NewLedgerUseCase(memory.NewTxRunner(store), ledger.DefaultConfig(), zerolog.Nop())
	f := &fixture{
		ledger:     l,
		devices:    usecase.NewDeviceUseCase(facilities, l),
		rentals:    rental.NewRentalUseCase(l, facilities, nil),
		repairs:    repair.NewRepairUseCase(l),
		facilityID: fac.ID,
	}
	dt, err := f.devices.CreateType(ctx, fac.ID, dto.CreateDeviceTypeRequest{Category: entity.DeviceCategoryBoneConduction, Name: "골전도 이어폰"})
	require.NoError(t, err)
	f.typeID = dt.ID
	for i := 0; i < units; i++ {
		it, err := f.devices.RegisterItem(ctx, fac.ID, user, dto.RegisterDeviceItemRequest{DeviceTypeID: dt.ID, Serial: fmt.Sprintf("BC-%02d", i)})
		require.NoError(t, err)
		f.items = append(f.items, it.ID)
	}
	return f
}

func (f *fixture) stock(t *testing.T) [4]int {
	t.Helper()
	s, err := f.ledger.GetStock(context.Background(), f.facilityID, f.typeID)
	require.NoError(t, err)
	require.True(t, s.Consistent())
	return [4]int{s.Total, s.Available, s.Rented, s.Broken}
}

func (f *fixture) itemStatus(t *testing.T, id string) string {
	t.Helper()
	it, err := f.devices.GetItem(context.Background(), f.facilityID, id)
	require.NoError(t, err)
	return it.Status
}

func TestOpenAdvanceComplete_RestoresAvailable(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	rep, err := f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "no enciende"})
	require.NoError(t, err)
	assert.Equal(t, entity.RepairStatusReported, rep.Status)
	assert.False(t, rep.FromRented)
	assert.Equal(t, [4]int{3, 2, 0, 1}, f.stock(t))
	assert.Equal(t, entity.ItemStatusBroken, f.itemStatus(t, f.items[0]))

	rep, err = f.repairs.Advance(ctx, f.facilityID, rep.ID, user, entity.RepairStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.RepairStatusInProgress, rep.Status)
	assert.Equal(t, [4]int{3, 2, 0, 1}, f.stock(t), "in_progress sigue contando como broken")

	rep, err = f.repairs.Advance(ctx, f.facilityID, rep.ID, user, entity.RepairStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, rep.CompletedAt)
	assert.Equal(t, [4]int{3, 3, 0, 0}, f.stock(t))
	assert.Equal(t, entity.ItemStatusAvailable, f.itemStatus(t, f.items[0]))
}

func TestAdvance_OnlyForward(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	rep, err := f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "cable roto"})
	require.NoError(t, err)

	_, err = f.repairs.Advance(ctx, f.facilityID, rep.ID, user, entity.RepairStatusReported)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.repairs.Advance(ctx, f.facilityID, rep.ID, user, entity.RepairStatusCompleted)
	require.NoError(t, err)
	_, err = f.repairs.Advance(ctx, f.facilityID, rep.ID, user, entity.RepairStatusInProgress)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.repairs.Advance(ctx, f.facilityID, rep.ID, user, entity.RepairStatusCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, [4]int{1, 1, 0, 0}, f.stock(t), "completar dos veces no suma unidades")
}

func TestOpen_TwiceOnSameItem(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	_, err := f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "x"})
	require.NoError(t, err)
	_, err = f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "y"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, [4]int{2, 1, 0, 1}, f.stock(t))
}

func TestOpen_RentedItemThenReturnSkipsIt(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	start := time.Now()
	r, err := f.rentals.Create(ctx, f.facilityID, user, dto.CreateRentalRequest{
		BorrowerName: "Lee",
		StartDate:    start,
		DueDate:      start.AddDate(0, 0, 3),
		Lines:        []dto.RentalLineRequest{{DeviceTypeID: f.typeID, Quantity: 2, ItemIDs: f.items}},
	})
	require.NoError(t, err)
	assert.Equal(t, [4]int{2, 0, 2, 0}, f.stock(t))

	rep, err := f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[1], Description: "se cayó"})
	require.NoError(t, err)
	assert.True(t, rep.FromRented)
	assert.Equal(t, [4]int{2, 0, 1, 1}, f.stock(t))

	_, err = f.rentals.Return(ctx, f.facilityID, r.ID, user)
	require.NoError(t, err)
	assert.Equal(t, [4]int{2, 1, 0, 1}, f.stock(t))
	assert.Equal(t, entity.ItemStatusBroken, f.itemStatus(t, f.items[1]))
}

func TestOpen_Errors(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: "missing", Description: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.repairs.Open(ctx, "other", user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, [4]int{1, 1, 0, 0}, f.stock(t))
}

func TestList_ByStatus(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	a, err := f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "a"})
	require.NoError(t, err)
	_, err = f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[1], Description: "b"})
	require.NoError(t, err)
	_, err = f.repairs.Advance(ctx, f.facilityID, a.ID, user, entity.RepairStatusCompleted)
	require.NoError(t, err)

	open, err := f.repairs.List(ctx, f.facilityID, entity.RepairStatusReported, 10, 0)
	require.NoError(t, err)
	assert.Len(t, open.Items, 1)
	all, err := f.repairs.List(ctx, f.facilityID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	got, err := f.repairs.Get(ctx, f.facilityID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RepairStatusCompleted, got.Status)
}

// Con unidades registradas, las operaciones por cantidad no pueden desalinear
// contadores y unidades: la reparación solo se completa por su flujo.
func TestCountsOnlyRejectedWithRegisteredItems(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	rep, err := f.repairs.Open(ctx, f.facilityID, user, dto.OpenRepairRequest{DeviceItemID: f.items[0], Description: "pantalla"})
	require.NoError(t, err)
	assert.Equal(t, [4]int{1, 0, 0, 1}, f.stock(t))

	in := ledger.StockInput{FacilityID: f.facilityID, DeviceTypeID: f.typeID, UserID: user, Quantity: 1}
	_, err = f.ledger.CompleteRepair(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.RentDevices(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.ReturnDevices(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.ReportBroken(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, [4]int{1, 0, 0, 1}, f.stock(t))
	assert.Equal(t, entity.ItemStatusBroken, f.itemStatus(t, f.items[0]))

	_, err = f.repairs.Advance(ctx, f.facilityID, rep.ID, user, entity.RepairStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, [4]int{1, 1, 0, 0}, f.stock(t))
	assert.Equal(t, entity.ItemStatusAvailable, f.itemStatus(t, f.items[0]))
}
