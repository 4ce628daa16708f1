// Package cli implementa rentalctl, la consola de administración del libro de inventario.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/device-rental-api/internal/application/auth"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/storage"
	"github.com/jhoicas/device-rental-api/pkg/config"
	"github.com/jhoicas/device-rental-api/pkg/logger"
)

// ValidFormats formatos de salida permitidos.
var ValidFormats = []string{"text", "json"}

// RootOptions flags globales y apertura del backend.
type RootOptions struct {
	Format string // "json" | "text"
	// Open construye el backend. Si es nil se usa la configuración del entorno.
	Open func(ctx context.Context) (*storage.Backend, ledger.Config, error)
}

// services casos de uso que usan los comandos.
type services struct {
	backend    *storage.Backend
	ledger     *ledger.LedgerUseCase
	facilities *usecase.FacilityUseCase
	devices    *usecase.DeviceUseCase
	auth       *auth.AuthUseCase
}

// NewRootCommand crea el comando raíz de rentalctl.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}
	cmd := &cobra.Command{
		Use:   "rentalctl",
		Short: "Administración del inventario de dispositivos",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("formato inválido %q: debe ser uno de %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main imprime el error
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (json|text)")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewRecountCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openFromEnv carga config, logger y almacenamiento como lo hace la API.
func openFromEnv(ctx context.Context) (*storage.Backend, ledger.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, ledger.Config{}, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		return nil, ledger.Config{}, err
	}
	return backend, ledger.Config{
		TxTimeout:    cfg.Ledger.TxTimeout,
		MaxRetries:   cfg.Ledger.MaxRetries,
		RetryBackoff: cfg.Ledger.RetryBackoff,
	}, nil
}

func (o *RootOptions) services(ctx context.Context) (*services, error) {
	open := o.Open
	if open == nil {
		open = openFromEnv
	}
	backend, ledgerCfg, err := open(ctx)
	if err != nil {
		return nil, err
	}
	ledgerUC := ledger.NewLedgerUseCase(backend.Tx, ledgerCfg, zerolog.Nop())
	return &services{
		backend:    backend,
		ledger:     ledgerUC,
		facilities: usecase.NewFacilityUseCase(backend.Facilities),
		devices:    usecase.NewDeviceUseCase(backend.Facilities, ledgerUC),
		auth:       auth.NewAuthUseCase(backend.Users, backend.Facilities, auth.JWTConfig{}),
	}, nil
}

// printResult escribe v como JSON indentado o con el formateador de texto.
func printResult(w io.Writer, format string, v any, text func(io.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

// commandTimeout tope de cada comando completo.
const commandTimeout = 2 * time.Minute
