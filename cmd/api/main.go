package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/device-rental-api/internal/application/analytics"
	"github.com/jhoicas/device-rental-api/internal/application/auth"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/application/repair"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/device-rental-api/internal/infrastructure/pdf"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/device-rental-api/internal/interfaces/http"
	"github.com/jhoicas/device-rental-api/pkg/config"
	"github.com/jhoicas/device-rental-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer backend.Close()

	ledgerUC := ledger.NewLedgerUseCase(backend.Tx, ledger.Config{
		TxTimeout:    cfg.Ledger.TxTimeout,
		MaxRetries:   cfg.Ledger.MaxRetries,
		RetryBackoff: cfg.Ledger.RetryBackoff,
	}, log.Component("ledger"))

	authUC := auth.NewAuthUseCase(backend.Users, backend.Facilities, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(backend.Users)
	facilityUC := usecase.NewFacilityUseCase(backend.Facilities)
	deviceUC := usecase.NewDeviceUseCase(backend.Facilities, ledgerUC)

	// PDF: comprobante de alquiler
	receiptGenerator := infrapdf.NewMarotoReceiptGenerator()
	rentalUC := rental.NewRentalUseCase(ledgerUC, backend.Facilities, receiptGenerator)
	repairUC := repair.NewRepairUseCase(ledgerUC)
	dashboardUC := appanalytics.NewDashboardUseCase(backend.Dashboard, ledgerUC)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Device Rental API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		FacilityUC:  facilityUC,
		DeviceUC:    deviceUC,
		LedgerUC:    ledgerUC,
		RentalUC:    rentalUC,
		RepairUC:    repairUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		LoginRPS:    cfg.RateLimit.LoginRPS,
		LoginBurst:  cfg.RateLimit.LoginBurst,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
