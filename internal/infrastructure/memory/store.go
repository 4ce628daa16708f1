// Package memory implementa los puertos de persistencia en memoria de proceso.
// Reproduce la semántica que importa del almacenamiento PostgreSQL: bloqueo de fila
// (GetForUpdate espera hasta el fin de la transacción del dueño o hasta que el ctx
// expire) y escrituras todo-o-nada al confirmar. Se usa con STORAGE_DRIVER=memory
// y como backend de los tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

type stockKey struct {
	facilityID   string
	deviceTypeID string
}

// Store datos confirmados y tabla de bloqueos de fila.
type Store struct {
	mu          sync.RWMutex
	facilities  map[string]entity.Facility
	users       map[string]entity.User
	deviceTypes map[string]entity.DeviceType
	stocks      map[stockKey]entity.DeviceStock
	items       map[string]entity.DeviceItem
	rentals     map[string]entity.Rental
	repairs     map[string]entity.RepairReport
	movements   []entity.StockMovement

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		facilities:  make(map[string]entity.Facility),
		users:       make(map[string]entity.User),
		deviceTypes: make(map[string]entity.DeviceType),
		stocks:      make(map[stockKey]entity.DeviceStock),
		items:       make(map[string]entity.DeviceItem),
		rentals:     make(map[string]entity.Rental),
		repairs:     make(map[string]entity.RepairReport),
		locks:       make(map[string]chan struct{}),
	}
}

func (s *Store) lockChan(name string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[name] = ch
	}
	return ch
}

// lock espera el bloqueo de fila name; si el ctx expira antes, equivale a lock_timeout.
func (s *Store) lock(ctx context.Context, name string) error {
	select {
	case s.lockChan(name) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: bloqueo %s: %v", domain.ErrConflict, name, ctx.Err())
	}
}

func (s *Store) unlock(name string) {
	<-s.lockChan(name)
}

// tx transacción en memoria: escrituras en overlay hasta commit, bloqueos hasta release.
type tx struct {
	s    *Store
	held map[string]bool

	deviceTypes map[string]entity.DeviceType
	stocks      map[stockKey]entity.DeviceStock
	items       map[string]entity.DeviceItem
	rentals     map[string]entity.Rental
	repairs     map[string]entity.RepairReport
	movements   []entity.StockMovement
}

func newTx(s *Store) *tx {
	return &tx{
		s:           s,
		held:        make(map[string]bool),
		deviceTypes: make(map[string]entity.DeviceType),
		stocks:      make(map[stockKey]entity.DeviceStock),
		items:       make(map[string]entity.DeviceItem),
		rentals:     make(map[string]entity.Rental),
		repairs:     make(map[string]entity.RepairReport),
	}
}

func (t *tx) acquire(ctx context.Context, name string) error {
	if t.held[name] {
		return nil
	}
	if err := t.s.lock(ctx, name); err != nil {
		return err
	}
	t.held[name] = true
	return nil
}

func (t *tx) release() {
	for name := range t.held {
		t.s.unlock(name)
	}
	t.held = nil
}

func (t *tx) commit() {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range t.deviceTypes {
		s.deviceTypes[k] = v
	}
	for k, v := range t.stocks {
		s.stocks[k] = v
	}
	for k, v := range t.items {
		s.items[k] = v
	}
	for k, v := range t.rentals {
		s.rentals[k] = v
	}
	for k, v := range t.repairs {
		s.repairs[k] = v
	}
	s.movements = append(s.movements, t.movements...)
}

// TxRunner implementa ledger.TxRunner sobre Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos atados a una transacción nueva. Si fn falla o el ctx termina
// antes del commit, no se aplica ninguna escritura.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTx(r.s)
	defer t.release()
	if err := fn(ctx, r.s.repos(t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.commit()
	return nil
}

// Repos retorna repositorios sin transacción (lecturas y altas simples).
func (s *Store) Repos() ledger.Repos {
	return s.repos(nil)
}

func (s *Store) repos(t *tx) ledger.Repos {
	return ledger.Repos{
		Stock:       &StockRepo{s: s, t: t},
		Items:       &DeviceItemRepo{s: s, t: t},
		Movements:   &StockMovementRepo{s: s, t: t},
		Rentals:     &RentalRepo{s: s, t: t},
		Repairs:     &RepairReportRepo{s: s, t: t},
		DeviceTypes: &DeviceTypeRepo{s: s, t: t},
	}
}

// lookup busca primero en el overlay de la tx y luego en los datos confirmados.
func lookup[K comparable, V any](s *Store, overlay, base map[K]V, k K) (V, bool) {
	if overlay != nil {
		if v, ok := overlay[k]; ok {
			return v, true
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := base[k]
	return v, ok
}

// snapshot combina datos confirmados y overlay en un mapa nuevo.
func snapshot[K comparable, V any](s *Store, overlay, base map[K]V) map[K]V {
	s.mu.RLock()
	out := make(map[K]V, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	s.mu.RUnlock()
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// write guarda en el overlay si hay tx; si no, directo en los datos confirmados.
func write[K comparable, V any](s *Store, overlay, base map[K]V, k K, v V) {
	if overlay != nil {
		overlay[k] = v
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	base[k] = v
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
