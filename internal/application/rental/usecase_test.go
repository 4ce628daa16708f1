package rental_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/memory"
)

const user = "user-1"

type fixture struct {
	ledger     *ledger.LedgerUseCase
	devices    *usecase.DeviceUseCase
	rentals    *rental.RentalUseCase
	receipts   *fakeReceipts
	facilityID string
}

type fakeReceipts struct {
	lines []rental.ReceiptLine
}

func (f *fakeReceipts) GenerateRentalReceipt(_ context.Context, _ *entity.Rental, _ *entity.Facility, lines []rental.ReceiptLine) ([]byte, error) {
	f.lines = lines
	return []byte("%PDF-fake"), nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	facilities := memory.NewFacilityRepository(store)
	fac := &entity.Facility{ID: "fac-1", Name: "Seoul", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, facilities.Create(context.Background(), fac))
	cfg := ledger.Config{TxTimeout: time.Second, MaxRetries: 3, RetryBackoff: time.Millisecond}
	l := ledger.NewLedgerUseCase(memory.NewTxRunner(store), cfg, zerolog.Nop())
	rc := &fakeReceipts{}
	return &fixture{
		ledger:     l,
		devices:    usecase.NewDeviceUseCase(facilities, l),
		rentals:    rental.NewRentalUseCase(l, facilities, rc),
		receipts:   rc,
		facilityID: fac.ID,
	}
}

// typeWithItems crea un tipo con n unidades registradas y devuelve el tipo y los IDs.
func (f *fixture) typeWithItems(t *testing.T, name string, n int) (string, []string) {
	t.Helper()
	ctx := context.Background()
	dt, err := f.devices.CreateType(ctx, f.facilityID, dto.CreateDeviceTypeRequest{Category: entity.DeviceCategoryARGlasses, Name: name})
	require.NoError(t, err)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		it, err := f.devices.RegisterItem(ctx, f.facilityID, user, dto.RegisterDeviceItemRequest{DeviceTypeID: dt.ID, Serial: fmt.Sprintf("%s-%03d", name, i)})
		require.NoError(t, err)
		ids = append(ids, it.ID)
	}
	return dt.ID, ids
}

func (f *fixture) stock(t *testing.T, typeID string) [4]int {
	t.Helper()
	s, err := f.ledger.GetStock(context.Background(), f.facilityID, typeID)
	require.NoError(t, err)
	require.True(t, s.Consistent())
	return [4]int{s.Total, s.Available, s.Rented, s.Broken}
}

func request(lines ...dto.RentalLineRequest) dto.CreateRentalRequest {
	start := time.Now()
	return dto.CreateRentalRequest{
		BorrowerName: "Kim Minji",
		StartDate:    start,
		DueDate:      start.AddDate(0, 0, 7),
		Lines:        lines,
	}
}

func TestCreateAndReturn_MultipleLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, glassItems := f.typeWithItems(t, "AR", 3)
	bone, _ := f.typeWithItems(t, "BONE", 2)

	out, err := f.rentals.Create(ctx, f.facilityID, user, request(
		dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 2, ItemIDs: glassItems[:2]},
		dto.RentalLineRequest{DeviceTypeID: bone, Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, entity.RentalStatusActive, out.Status)
	assert.Equal(t, [4]int{3, 1, 2, 0}, f.stock(t, glasses))
	assert.Equal(t, [4]int{2, 1, 1, 0}, f.stock(t, bone))

	rented, err := f.devices.ListItems(ctx, repository.DeviceItemFilter{FacilityID: f.facilityID, Status: entity.ItemStatusRented})
	require.NoError(t, err)
	assert.Len(t, rented.Items, 2)

	back, err := f.rentals.Return(ctx, f.facilityID, out.ID, user)
	require.NoError(t, err)
	assert.Equal(t, entity.RentalStatusReturned, back.Status)
	require.NotNil(t, back.ReturnedAt)
	assert.Equal(t, [4]int{3, 3, 0, 0}, f.stock(t, glasses))
	assert.Equal(t, [4]int{2, 2, 0, 0}, f.stock(t, bone))

	_, err = f.rentals.Return(ctx, f.facilityID, out.ID, user)
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
}

func TestCreate_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, _ := f.typeWithItems(t, "AR", 3)
	bone, _ := f.typeWithItems(t, "BONE", 1)

	// La segunda línea no tiene stock: la primera no debe quedar aplicada.
	_, err := f.rentals.Create(ctx, f.facilityID, user, request(
		dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 2},
		dto.RentalLineRequest{DeviceTypeID: bone, Quantity: 2},
	))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, [4]int{3, 3, 0, 0}, f.stock(t, glasses))
	assert.Equal(t, [4]int{1, 1, 0, 0}, f.stock(t, bone))

	list, err := f.rentals.List(ctx, repository.RentalFilter{FacilityID: f.facilityID, Limit: 10}, false)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestCreate_ItemAlreadyRented(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, items := f.typeWithItems(t, "AR", 3)

	_, err := f.rentals.Create(ctx, f.facilityID, user, request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1, ItemIDs: items[:1]}))
	require.NoError(t, err)
	_, err = f.rentals.Create(ctx, f.facilityID, user, request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1, ItemIDs: items[:1]}))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, [4]int{3, 2, 1, 0}, f.stock(t, glasses))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, items := f.typeWithItems(t, "AR", 2)

	cases := []struct {
		name string
		req  dto.CreateRentalRequest
		want error
	}{
		{"sin usuario", func() dto.CreateRentalRequest {
			r := request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1})
			r.BorrowerName = " "
			return r
		}(), domain.ErrInvalidInput},
		{"fechas invertidas", func() dto.CreateRentalRequest {
			r := request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1})
			r.DueDate = r.StartDate.Add(-time.Hour)
			return r
		}(), domain.ErrInvalidInput},
		{"sin líneas", request(), domain.ErrInvalidInput},
		{"cantidad cero", request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 0}), domain.ErrInvalidQuantity},
		{"tipo repetido", request(
			dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1},
			dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1},
		), domain.ErrInvalidInput},
		{"item_ids no coincide", request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 2, ItemIDs: items[:1]}), domain.ErrInvalidInput},
		{"tipo inexistente", request(dto.RentalLineRequest{DeviceTypeID: "missing", Quantity: 1}), domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.rentals.Create(ctx, f.facilityID, user, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, [4]int{2, 2, 0, 0}, f.stock(t, glasses))
		})
	}
}

func TestReturn_OtherFacilityNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, _ := f.typeWithItems(t, "AR", 1)
	out, err := f.rentals.Create(ctx, f.facilityID, user, request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.rentals.Return(ctx, "other-facility", out.ID, user)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.rentals.Get(ctx, "other-facility", out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_ConcurrentRentalsNeverOversell(t *testing.T) {
	f := newFixture(t)
	glasses, _ := f.typeWithItems(t, "AR", 4)
	bone, _ := f.typeWithItems(t, "BONE", 4)

	const n = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Órdenes de línea distintos: el bloqueo ordenado evita ciclos.
			lines := []dto.RentalLineRequest{{DeviceTypeID: glasses, Quantity: 1}, {DeviceTypeID: bone, Quantity: 1}}
			if i%2 == 1 {
				lines[0], lines[1] = lines[1], lines[0]
			}
			_, err := f.rentals.Create(context.Background(), f.facilityID, user, request(lines...))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, ok)
	assert.Equal(t, [4]int{4, 0, 4, 0}, f.stock(t, glasses))
	assert.Equal(t, [4]int{4, 0, 4, 0}, f.stock(t, bone))
}

func TestList_OverdueOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, _ := f.typeWithItems(t, "AR", 2)

	late := request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1})
	late.StartDate = time.Now().AddDate(0, 0, -10)
	late.DueDate = time.Now().AddDate(0, 0, -3)
	overdue, err := f.rentals.Create(ctx, f.facilityID, user, late)
	require.NoError(t, err)
	assert.True(t, overdue.Overdue)

	_, err = f.rentals.Create(ctx, f.facilityID, user, request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1}))
	require.NoError(t, err)

	list, err := f.rentals.List(ctx, repository.RentalFilter{FacilityID: f.facilityID, Limit: 10}, true)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, overdue.ID, list.Items[0].ID)
}

func TestReceipt_ResolvesNamesAndSerials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, items := f.typeWithItems(t, "AR", 2)
	out, err := f.rentals.Create(ctx, f.facilityID, user, request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 2, ItemIDs: items}))
	require.NoError(t, err)

	pdf, name, err := f.rentals.Receipt(ctx, f.facilityID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "rental-"+out.ID[:8]+".pdf", name)
	require.Len(t, f.receipts.lines, 1)
	assert.Equal(t, "AR", f.receipts.lines[0].DeviceTypeName)
	assert.ElementsMatch(t, []string{"AR-000", "AR-001"}, f.receipts.lines[0].Serials)
}

// Un vencido antiguo no queda fuera de la primera página por los activos más recientes.
func TestList_OverdueOnlyPaginado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	glasses, _ := f.typeWithItems(t, "AR", 4)

	late := request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1})
	late.StartDate = time.Now().AddDate(0, 0, -10)
	late.DueDate = time.Now().AddDate(0, 0, -3)
	overdue, err := f.rentals.Create(ctx, f.facilityID, user, late)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.rentals.Create(ctx, f.facilityID, user, request(dto.RentalLineRequest{DeviceTypeID: glasses, Quantity: 1}))
		require.NoError(t, err)
	}

	list, err := f.rentals.List(ctx, repository.RentalFilter{FacilityID: f.facilityID, Limit: 2}, true)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, overdue.ID, list.Items[0].ID)

	list, err = f.rentals.List(ctx, repository.RentalFilter{FacilityID: f.facilityID, Limit: 2, Offset: 1}, true)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	list, err = f.rentals.List(ctx, repository.RentalFilter{FacilityID: f.facilityID, Limit: 2}, false)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}
