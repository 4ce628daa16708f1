// Package ledger aplica las transiciones del libro de inventario de forma transaccional:
// bloqueo de fila por (sede, tipo), validación, actualización y registro en el diario.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	domledger "github.com/jhoicas/device-rental-api/internal/domain/ledger"
)

// Config límites de ejecución de las transacciones del libro.
type Config struct {
	TxTimeout    time.Duration // tiempo máximo por intento
	MaxRetries   int           // reintentos ante ErrConflict
	RetryBackoff time.Duration // espera base entre reintentos (lineal)
}

// DefaultConfig valores usados cuando la configuración viene en cero.
func DefaultConfig() Config {
	return Config{TxTimeout: 5 * time.Second, MaxRetries: 3, RetryBackoff: 50 * time.Millisecond}
}

// Operation describe una mutación sobre una fila de DeviceStock.
type Operation struct {
	Type         string // entity.MovementType*
	FacilityID   string
	DeviceTypeID string
	Quantity     int
	NewTotal     int  // solo ADJUST
	FromRented   bool // solo BROKEN
	Reason       string
	Reference    string
	UserID       string
	// CountsOnly marca las operaciones por cantidad sin unidades: no se permiten
	// sobre tipos con unidades registradas, cuyo estado llevan rentas y reparaciones.
	CountsOnly bool
}

// StockInput entrada común de RentDevices/ReturnDevices/ReportBroken/CompleteRepair.
type StockInput struct {
	FacilityID   string
	DeviceTypeID string
	UserID       string
	Quantity     int
	FromRented   bool
	Reference    string
}

// AdjustInput entrada de AdjustStock.
type AdjustInput struct {
	FacilityID   string
	DeviceTypeID string
	UserID       string
	NewTotal     int
	Reason       string
}

// RecountResult contadores antes y después de un reconteo.
type RecountResult struct {
	Before  entity.DeviceStock
	After   entity.DeviceStock
	Changed bool
}

// LedgerUseCase punto único de mutación de DeviceStock.
type LedgerUseCase struct {
	tx  TxRunner
	cfg Config
	log zerolog.Logger
	now func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(tx TxRunner, cfg Config, log zerolog.Logger) *LedgerUseCase {
	def := DefaultConfig()
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = def.TxTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	return &LedgerUseCase{tx: tx, cfg: cfg, log: log, now: time.Now}
}

// RentDevices available -= q; rented += q. ErrInsufficientStock si available < q.
func (uc *LedgerUseCase) RentDevices(ctx context.Context, in StockInput) (*entity.DeviceStock, error) {
	return uc.applyOne(ctx, in.operation(entity.MovementTypeRent))
}

// ReturnDevices rented -= q; available += q. ErrOverReturn si rented < q.
func (uc *LedgerUseCase) ReturnDevices(ctx context.Context, in StockInput) (*entity.DeviceStock, error) {
	return uc.applyOne(ctx, in.operation(entity.MovementTypeReturn))
}

// ReportBroken mueve q unidades a broken desde available (o rented si FromRented).
func (uc *LedgerUseCase) ReportBroken(ctx context.Context, in StockInput) (*entity.DeviceStock, error) {
	return uc.applyOne(ctx, in.operation(entity.MovementTypeBroken))
}

// CompleteRepair broken -= q; available += q.
func (uc *LedgerUseCase) CompleteRepair(ctx context.Context, in StockInput) (*entity.DeviceStock, error) {
	return uc.applyOne(ctx, in.operation(entity.MovementTypeRepair))
}

// RegisterUnits incorpora q unidades nuevas (total y available).
func (uc *LedgerUseCase) RegisterUnits(ctx context.Context, in StockInput) (*entity.DeviceStock, error) {
	return uc.applyOne(ctx, in.operation(entity.MovementTypeRegister))
}

// AdjustStock override administrativo con justificación obligatoria.
func (uc *LedgerUseCase) AdjustStock(ctx context.Context, in AdjustInput) (*entity.DeviceStock, error) {
	return uc.applyOne(ctx, Operation{
		Type:         entity.MovementTypeAdjust,
		FacilityID:   in.FacilityID,
		DeviceTypeID: in.DeviceTypeID,
		NewTotal:     in.NewTotal,
		Reason:       in.Reason,
		UserID:       in.UserID,
	})
}

// RecountStock reconstruye los contadores desde el estado de las unidades registradas.
// Si el tipo no tiene unidades registradas no cambia nada.
func (uc *LedgerUseCase) RecountStock(ctx context.Context, facilityID, deviceTypeID, userID string) (*RecountResult, error) {
	if facilityID == "" || deviceTypeID == "" {
		return nil, domain.ErrInvalidInput
	}
	var res RecountResult
	err := uc.Execute(ctx, func(ctx context.Context, repos Repos) error {
		stock, err := repos.Stock.GetForUpdate(ctx, facilityID, deviceTypeID)
		if err != nil {
			return err
		}
		items, err := repos.Items.ListByType(ctx, facilityID, deviceTypeID)
		if err != nil {
			return err
		}
		res = RecountResult{Before: *stock}
		if !domledger.Recount(stock, items) || counters(res.Before) == counters(*stock) {
			res.After = res.Before
			return nil
		}
		now := uc.now()
		stock.UpdatedAt = now
		if err := repos.Stock.Update(ctx, stock); err != nil {
			return err
		}
		res.After = *stock
		res.Changed = true
		return repos.Movements.Create(ctx, movement(Operation{
			Type:         entity.MovementTypeAdjust,
			FacilityID:   facilityID,
			DeviceTypeID: deviceTypeID,
			Quantity:     stock.Total - res.Before.Total,
			Reason:       "recount",
			UserID:       userID,
		}, stock, now))
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetStock obtiene los contadores actuales sin bloquear.
func (uc *LedgerUseCase) GetStock(ctx context.Context, facilityID, deviceTypeID string) (*entity.DeviceStock, error) {
	var out *entity.DeviceStock
	err := uc.View(ctx, func(ctx context.Context, repos Repos) error {
		s, err := repos.Stock.Get(ctx, facilityID, deviceTypeID)
		out = s
		return err
	})
	return out, err
}

// ListStock lista los contadores de todos los tipos de una sede.
func (uc *LedgerUseCase) ListStock(ctx context.Context, facilityID string) ([]*entity.DeviceStock, error) {
	var out []*entity.DeviceStock
	err := uc.View(ctx, func(ctx context.Context, repos Repos) error {
		list, err := repos.Stock.ListByFacility(ctx, facilityID)
		out = list
		return err
	})
	return out, err
}

// ListMovements lista el diario de un (sede, tipo), más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, facilityID, deviceTypeID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := uc.View(ctx, func(ctx context.Context, repos Repos) error {
		list, err := repos.Movements.ListByStock(ctx, facilityID, deviceTypeID, limit, offset)
		out = list
		return err
	})
	return out, err
}

// View ejecuta lecturas en una transacción sin bloqueo de filas ni reintentos.
func (uc *LedgerUseCase) View(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	return uc.tx.Run(ctx, fn)
}

// Execute corre fn en una transacción con timeout por intento y reintenta ante ErrConflict.
// Otros casos de uso (alquileres, reparaciones) lo usan para combinar varias operaciones
// del libro con sus propias escrituras en una sola unidad atómica.
func (uc *LedgerUseCase) Execute(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	var err error
	for attempt := 0; attempt <= uc.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			uc.log.Warn().Err(err).Int("attempt", attempt).Msg("ledger: reintento por conflicto")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * uc.cfg.RetryBackoff):
			}
		}
		err = uc.runOnce(ctx, fn)
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

func (uc *LedgerUseCase) runOnce(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	txCtx, cancel := context.WithTimeout(ctx, uc.cfg.TxTimeout)
	defer cancel()
	err := uc.tx.Run(txCtx, fn)
	if err == nil {
		return nil
	}
	// Timeout propio del intento (no cancelación del caller): conflicto reintentable.
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

// Apply ejecuta op usando los repos de la transacción en curso: bloquea la fila,
// aplica la transición, persiste y registra el movimiento.
func (uc *LedgerUseCase) Apply(ctx context.Context, repos Repos, op Operation) (*entity.DeviceStock, error) {
	if op.FacilityID == "" || op.DeviceTypeID == "" {
		return nil, domain.ErrInvalidInput
	}
	stock, err := repos.Stock.GetForUpdate(ctx, op.FacilityID, op.DeviceTypeID)
	if err != nil {
		return nil, err
	}
	if op.CountsOnly {
		items, err := repos.Items.ListByType(ctx, op.FacilityID, op.DeviceTypeID)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			return nil, fmt.Errorf("%w: el tipo tiene unidades registradas, use rentas o reparaciones", domain.ErrInvalidInput)
		}
	}
	before := stock.Total
	switch op.Type {
	case entity.MovementTypeRent:
		err = domledger.Rent(stock, op.Quantity)
	case entity.MovementTypeReturn:
		err = domledger.Return(stock, op.Quantity)
	case entity.MovementTypeBroken:
		err = domledger.ReportBroken(stock, op.Quantity, op.FromRented)
	case entity.MovementTypeRepair:
		err = domledger.CompleteRepair(stock, op.Quantity)
	case entity.MovementTypeRegister:
		err = domledger.Register(stock, op.Quantity)
	case entity.MovementTypeAdjust:
		err = domledger.Adjust(stock, op.NewTotal, op.Reason)
		op.Quantity = op.NewTotal - before
	default:
		err = domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	now := uc.now()
	stock.UpdatedAt = now
	if err := repos.Stock.Update(ctx, stock); err != nil {
		return nil, err
	}
	if err := repos.Movements.Create(ctx, movement(op, stock, now)); err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("type", op.Type).
		Str("facility_id", op.FacilityID).
		Str("device_type_id", op.DeviceTypeID).
		Int("quantity", op.Quantity).
		Int("available", stock.Available).
		Int("rented", stock.Rented).
		Int("broken", stock.Broken).
		Msg("ledger: movimiento aplicado")
	return stock, nil
}

func (uc *LedgerUseCase) applyOne(ctx context.Context, op Operation) (*entity.DeviceStock, error) {
	var out *entity.DeviceStock
	err := uc.Execute(ctx, func(ctx context.Context, repos Repos) error {
		s, err := uc.Apply(ctx, repos, op)
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (in StockInput) operation(movementType string) Operation {
	return Operation{
		Type:         movementType,
		FacilityID:   in.FacilityID,
		DeviceTypeID: in.DeviceTypeID,
		Quantity:     in.Quantity,
		FromRented:   in.FromRented,
		Reference:    in.Reference,
		UserID:       in.UserID,
		CountsOnly:   movementType != entity.MovementTypeRegister,
	}
}

func movement(op Operation, s *entity.DeviceStock, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:           uuid.New().String(),
		FacilityID:   op.FacilityID,
		DeviceTypeID: op.DeviceTypeID,
		Type:         op.Type,
		Quantity:     op.Quantity,
		Total:        s.Total,
		Available:    s.Available,
		Rented:       s.Rented,
		Broken:       s.Broken,
		Reference:    op.Reference,
		Reason:       op.Reason,
		CreatedBy:    op.UserID,
		CreatedAt:    now,
	}
}

func counters(s entity.DeviceStock) [4]int {
	return [4]int{s.Total, s.Available, s.Rented, s.Broken}
}
