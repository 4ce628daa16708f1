package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var (
	_ repository.DeviceStockRepository   = (*StockRepo)(nil)
	_ repository.DeviceItemRepository    = (*DeviceItemRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.RentalRepository        = (*RentalRepo)(nil)
	_ repository.RepairReportRepository  = (*RepairReportRepo)(nil)
	_ repository.DeviceTypeRepository    = (*DeviceTypeRepo)(nil)
)

// ── Stock ────────────────────────────────────────────────────────────────────

// StockRepo contadores por (sede, tipo).
type StockRepo struct {
	s *Store
	t *tx
}

func (r *StockRepo) overlay() map[stockKey]entity.DeviceStock {
	if r.t == nil {
		return nil
	}
	return r.t.stocks
}

// Get obtiene los contadores sin bloquear.
func (r *StockRepo) Get(_ context.Context, facilityID, deviceTypeID string) (*entity.DeviceStock, error) {
	st, ok := lookup(r.s, r.overlay(), r.s.stocks, stockKey{facilityID, deviceTypeID})
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *StockRepo) GetForUpdate(ctx context.Context, facilityID, deviceTypeID string) (*entity.DeviceStock, error) {
	if r.t != nil {
		if err := r.t.acquire(ctx, "stock:"+facilityID+":"+deviceTypeID); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, facilityID, deviceTypeID)
}

// Create inserta la fila en cero si no existe.
func (r *StockRepo) Create(_ context.Context, stock *entity.DeviceStock) error {
	key := stockKey{stock.FacilityID, stock.DeviceTypeID}
	if _, ok := lookup(r.s, r.overlay(), r.s.stocks, key); ok {
		return nil
	}
	write(r.s, r.overlay(), r.s.stocks, key, *stock)
	return nil
}

// Update persiste los contadores con control de versión e incrementa Version.
func (r *StockRepo) Update(_ context.Context, stock *entity.DeviceStock) error {
	key := stockKey{stock.FacilityID, stock.DeviceTypeID}
	cur, ok := lookup(r.s, r.overlay(), r.s.stocks, key)
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != stock.Version {
		return fmt.Errorf("%w: versión de stock desactualizada", domain.ErrConflict)
	}
	stock.Version++
	write(r.s, r.overlay(), r.s.stocks, key, *stock)
	return nil
}

// ListByFacility lista los contadores de una sede.
func (r *StockRepo) ListByFacility(_ context.Context, facilityID string) ([]*entity.DeviceStock, error) {
	all := snapshot(r.s, r.overlay(), r.s.stocks)
	list := make([]*entity.DeviceStock, 0)
	for k, v := range all {
		if k.facilityID == facilityID {
			v := v
			list = append(list, &v)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DeviceTypeID < list[j].DeviceTypeID })
	return list, nil
}

// ── Device types ─────────────────────────────────────────────────────────────

// DeviceTypeRepo tipos de dispositivo.
type DeviceTypeRepo struct {
	s *Store
	t *tx
}

func (r *DeviceTypeRepo) overlay() map[string]entity.DeviceType {
	if r.t == nil {
		return nil
	}
	return r.t.deviceTypes
}

// Create persiste un tipo; (sede, nombre) es único.
func (r *DeviceTypeRepo) Create(ctx context.Context, dt *entity.DeviceType) error {
	if existing, _ := r.GetByName(ctx, dt.FacilityID, dt.Name); existing != nil {
		return domain.ErrDuplicate
	}
	write(r.s, r.overlay(), r.s.deviceTypes, dt.ID, *dt)
	return nil
}

// GetByID obtiene un tipo por ID.
func (r *DeviceTypeRepo) GetByID(_ context.Context, id string) (*entity.DeviceType, error) {
	dt, ok := lookup(r.s, r.overlay(), r.s.deviceTypes, id)
	if !ok {
		return nil, nil
	}
	return &dt, nil
}

// GetByName obtiene un tipo por nombre normalizado dentro de la sede.
func (r *DeviceTypeRepo) GetByName(_ context.Context, facilityID, name string) (*entity.DeviceType, error) {
	for _, dt := range snapshot(r.s, r.overlay(), r.s.deviceTypes) {
		if dt.FacilityID == facilityID && dt.Name == name {
			dt := dt
			return &dt, nil
		}
	}
	return nil, nil
}

// ListByFacility lista los tipos de una sede por nombre.
func (r *DeviceTypeRepo) ListByFacility(_ context.Context, facilityID string) ([]*entity.DeviceType, error) {
	list := make([]*entity.DeviceType, 0)
	for _, dt := range snapshot(r.s, r.overlay(), r.s.deviceTypes) {
		if dt.FacilityID == facilityID {
			dt := dt
			list = append(list, &dt)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ── Device items ─────────────────────────────────────────────────────────────

// DeviceItemRepo unidades físicas.
type DeviceItemRepo struct {
	s *Store
	t *tx
}

func (r *DeviceItemRepo) overlay() map[string]entity.DeviceItem {
	if r.t == nil {
		return nil
	}
	return r.t.items
}

// Create persiste una unidad; (sede, serial) es único.
func (r *DeviceItemRepo) Create(_ context.Context, item *entity.DeviceItem) error {
	for _, it := range snapshot(r.s, r.overlay(), r.s.items) {
		if it.FacilityID == item.FacilityID && it.Serial == item.Serial {
			return domain.ErrDuplicate
		}
	}
	write(r.s, r.overlay(), r.s.items, item.ID, *item)
	return nil
}

// GetByID obtiene una unidad por ID.
func (r *DeviceItemRepo) GetByID(_ context.Context, id string) (*entity.DeviceItem, error) {
	it, ok := lookup(r.s, r.overlay(), r.s.items, id)
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// GetForUpdate bloquea la unidad hasta el fin de la transacción.
func (r *DeviceItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.DeviceItem, error) {
	if r.t != nil {
		if err := r.t.acquire(ctx, "item:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus cambia el estado de la unidad.
func (r *DeviceItemRepo) UpdateStatus(_ context.Context, id, status string, at time.Time) error {
	it, ok := lookup(r.s, r.overlay(), r.s.items, id)
	if !ok {
		return domain.ErrNotFound
	}
	it.Status = status
	it.UpdatedAt = at
	write(r.s, r.overlay(), r.s.items, id, it)
	return nil
}

// List lista unidades con filtros y paginación (por serial).
func (r *DeviceItemRepo) List(_ context.Context, f repository.DeviceItemFilter) ([]*entity.DeviceItem, error) {
	list := make([]*entity.DeviceItem, 0)
	for _, it := range snapshot(r.s, r.overlay(), r.s.items) {
		if it.FacilityID != f.FacilityID {
			continue
		}
		if f.DeviceTypeID != "" && it.DeviceTypeID != f.DeviceTypeID {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		it := it
		list = append(list, &it)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Serial < list[j].Serial })
	return paginate(list, f.Limit, f.Offset), nil
}

// ListByType todas las unidades de un tipo.
func (r *DeviceItemRepo) ListByType(ctx context.Context, facilityID, deviceTypeID string) ([]*entity.DeviceItem, error) {
	return r.List(ctx, repository.DeviceItemFilter{FacilityID: facilityID, DeviceTypeID: deviceTypeID})
}

// ── Movements ────────────────────────────────────────────────────────────────

// StockMovementRepo diario de movimientos.
type StockMovementRepo struct {
	s *Store
	t *tx
}

// Create agrega un movimiento.
func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if r.t != nil {
		r.t.movements = append(r.t.movements, *m)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

// ListByStock lista movimientos de un (sede, tipo), más recientes primero.
func (r *StockMovementRepo) ListByStock(_ context.Context, facilityID, deviceTypeID string, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	all := append([]entity.StockMovement(nil), r.s.movements...)
	r.s.mu.RUnlock()
	if r.t != nil {
		all = append(all, r.t.movements...)
	}
	list := make([]*entity.StockMovement, 0)
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if m.FacilityID == facilityID && m.DeviceTypeID == deviceTypeID {
			list = append(list, &m)
		}
	}
	return paginate(list, limit, offset), nil
}

// ── Rentals ──────────────────────────────────────────────────────────────────

// RentalRepo alquileres con sus líneas.
type RentalRepo struct {
	s *Store
	t *tx
}

func (r *RentalRepo) overlay() map[string]entity.Rental {
	if r.t == nil {
		return nil
	}
	return r.t.rentals
}

func cloneRental(in entity.Rental) entity.Rental {
	out := in
	out.Lines = make([]entity.RentalLine, len(in.Lines))
	for i, l := range in.Lines {
		l.ItemIDs = append([]string(nil), l.ItemIDs...)
		out.Lines[i] = l
	}
	if in.ReturnedAt != nil {
		at := *in.ReturnedAt
		out.ReturnedAt = &at
	}
	return out
}

// Create persiste el alquiler y sus líneas.
func (r *RentalRepo) Create(_ context.Context, rental *entity.Rental) error {
	write(r.s, r.overlay(), r.s.rentals, rental.ID, cloneRental(*rental))
	return nil
}

// GetByID obtiene un alquiler con sus líneas.
func (r *RentalRepo) GetByID(_ context.Context, id string) (*entity.Rental, error) {
	rt, ok := lookup(r.s, r.overlay(), r.s.rentals, id)
	if !ok {
		return nil, nil
	}
	out := cloneRental(rt)
	return &out, nil
}

// GetForUpdate bloquea el alquiler hasta el fin de la transacción.
func (r *RentalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rental, error) {
	if r.t != nil {
		if err := r.t.acquire(ctx, "rental:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// MarkReturned cierra el alquiler.
func (r *RentalRepo) MarkReturned(_ context.Context, id string, at time.Time) error {
	rt, ok := lookup(r.s, r.overlay(), r.s.rentals, id)
	if !ok {
		return domain.ErrNotFound
	}
	rt = cloneRental(rt)
	rt.Status = entity.RentalStatusReturned
	rt.ReturnedAt = &at
	rt.UpdatedAt = at
	write(r.s, r.overlay(), r.s.rentals, id, rt)
	return nil
}

func (r *RentalRepo) byFacility(facilityID, status string) []*entity.Rental {
	list := make([]*entity.Rental, 0)
	for _, rt := range snapshot(r.s, r.overlay(), r.s.rentals) {
		if rt.FacilityID != facilityID || (status != "" && rt.Status != status) {
			continue
		}
		c := cloneRental(rt)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

// List lista alquileres de una sede, más recientes primero.
func (r *RentalRepo) List(_ context.Context, f repository.RentalFilter) ([]*entity.Rental, error) {
	list := r.byFacility(f.FacilityID, f.Status)
	if !f.OverdueAt.IsZero() {
		overdue := list[:0]
		for _, rt := range list {
			if rt.IsOverdue(f.OverdueAt) {
				overdue = append(overdue, rt)
			}
		}
		list = overdue
	}
	return paginate(list, f.Limit, f.Offset), nil
}

// CountActive cuenta activos y vencidos.
func (r *RentalRepo) CountActive(_ context.Context, facilityID string, now time.Time) (int, int, error) {
	active := r.byFacility(facilityID, entity.RentalStatusActive)
	overdue := 0
	for _, rt := range active {
		if rt.IsOverdue(now) {
			overdue++
		}
	}
	return len(active), overdue, nil
}

// ── Repairs ──────────────────────────────────────────────────────────────────

// RepairReportRepo reportes de reparación.
type RepairReportRepo struct {
	s *Store
	t *tx
}

func (r *RepairReportRepo) overlay() map[string]entity.RepairReport {
	if r.t == nil {
		return nil
	}
	return r.t.repairs
}

// Create persiste un reporte.
func (r *RepairReportRepo) Create(_ context.Context, rep *entity.RepairReport) error {
	write(r.s, r.overlay(), r.s.repairs, rep.ID, *rep)
	return nil
}

// GetByID obtiene un reporte por ID.
func (r *RepairReportRepo) GetByID(_ context.Context, id string) (*entity.RepairReport, error) {
	rep, ok := lookup(r.s, r.overlay(), r.s.repairs, id)
	if !ok {
		return nil, nil
	}
	return &rep, nil
}

// GetForUpdate bloquea el reporte hasta el fin de la transacción.
func (r *RepairReportRepo) GetForUpdate(ctx context.Context, id string) (*entity.RepairReport, error) {
	if r.t != nil {
		if err := r.t.acquire(ctx, "repair:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Update persiste estado y fechas del reporte.
func (r *RepairReportRepo) Update(_ context.Context, rep *entity.RepairReport) error {
	if _, ok := lookup(r.s, r.overlay(), r.s.repairs, rep.ID); !ok {
		return domain.ErrNotFound
	}
	write(r.s, r.overlay(), r.s.repairs, rep.ID, *rep)
	return nil
}

// List lista reportes de una sede, más recientes primero.
func (r *RepairReportRepo) List(_ context.Context, facilityID, status string, limit, offset int) ([]*entity.RepairReport, error) {
	list := make([]*entity.RepairReport, 0)
	for _, rep := range snapshot(r.s, r.overlay(), r.s.repairs) {
		if rep.FacilityID != facilityID || (status != "" && rep.Status != status) {
			continue
		}
		rep := rep
		list = append(list, &rep)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// GetOpenByItem reporte abierto de una unidad.
func (r *RepairReportRepo) GetOpenByItem(_ context.Context, itemID string) (*entity.RepairReport, error) {
	for _, rep := range snapshot(r.s, r.overlay(), r.s.repairs) {
		if rep.DeviceItemID == itemID && rep.IsOpen() {
			rep := rep
			return &rep, nil
		}
	}
	return nil, nil
}

// CountOpen cuenta reportes abiertos de una sede.
func (r *RepairReportRepo) CountOpen(_ context.Context, facilityID string) (int, error) {
	n := 0
	for _, rep := range snapshot(r.s, r.overlay(), r.s.repairs) {
		if rep.FacilityID == facilityID && rep.IsOpen() {
			n++
		}
	}
	return n, nil
}
