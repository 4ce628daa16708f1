// Package storage arma el backend de persistencia según STORAGE_DRIVER.
// "postgres" usa pgxpool con bloqueo de fila real; "memory" mantiene todo en proceso
// (demo local y tests de integración de la API).
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/memory"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/postgres"
	"github.com/jhoicas/device-rental-api/pkg/config"
)

// Backend puertos de persistencia listos para inyectar en los casos de uso.
type Backend struct {
	Tx         ledger.TxRunner
	Facilities repository.FacilityRepository
	Users      repository.UserRepository
	Dashboard  repository.DashboardRepository
	close      func()
}

// Close libera conexiones.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open construye el backend configurado. Con postgres aplica las migraciones embebidas.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("storage: usando almacenamiento en memoria, los datos no persisten")
		return NewMemory(memory.NewStore()), nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
		log.Info().Msg("storage: conectado a PostgreSQL")
		return &Backend{
			Tx:         postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
			Facilities: postgres.NewFacilityRepository(pool),
			Users:      postgres.NewUserRepository(pool),
			Dashboard:  postgres.NewDashboardRepository(pool),
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Storage.Driver)
	}
}

// NewMemory envuelve un memory.Store existente (tests de la API HTTP).
func NewMemory(store *memory.Store) *Backend {
	return &Backend{
		Tx:         memory.NewTxRunner(store),
		Facilities: memory.NewFacilityRepository(store),
		Users:      memory.NewUserRepository(store),
		Dashboard:  memory.NewDashboardRepository(store),
	}
}
