package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/device-rental-api/internal/application/analytics"
	"github.com/jhoicas/device-rental-api/internal/application/auth"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/application/repair"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	FacilityUC  *usecase.FacilityUseCase
	DeviceUC    *usecase.DeviceUseCase
	LedgerUC    *ledger.LedgerUseCase
	RentalUC    *rental.RentalUseCase
	RepairUC    *repair.RepairUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	LoginRPS    float64
	LoginBurst  int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	facilityHandler := NewFacilityHandler(deps.FacilityUC)
	deviceHandler := NewDeviceHandler(deps.DeviceUC)
	stockHandler := NewStockHandler(deps.LedgerUC)
	rentalHandler := NewRentalHandler(deps.RentalUC)
	repairHandler := NewRepairHandler(deps.RepairUC)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)

	// Auth (público, con límite por IP)
	api.Post("/auth/login", RateLimitByIP(deps.LoginRPS, deps.LoginBurst), authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleFacilityManager)
	access := RequireFacilityAccess()

	protected.Post("/auth/register", adminOnly, authHandler.Register)
	protected.Get("/me", anyRole, authHandler.Me)

	// Sedes: alta y listado solo admin.
	facilities := protected.Group("/facilities")
	facilities.Post("/", adminOnly, facilityHandler.Create)
	facilities.Get("/", adminOnly, facilityHandler.List)
	facilities.Get("/:facility_id", access, facilityHandler.GetByID)
	facilities.Put("/:facility_id", adminOnly, facilityHandler.Update)
	facilities.Get("/:facility_id/users", access, authHandler.ListUsers)
	facilities.Get("/:facility_id/dashboard", access, dashboardHandler.GetSummary)

	// Catálogo de dispositivos
	facilities.Post("/:facility_id/device-types", adminOnly, deviceHandler.CreateType)
	facilities.Get("/:facility_id/device-types", access, deviceHandler.ListTypes)
	facilities.Post("/:facility_id/items", adminOnly, deviceHandler.RegisterItem)
	facilities.Get("/:facility_id/items", access, deviceHandler.ListItems)
	facilities.Get("/:facility_id/items/:id", access, deviceHandler.GetItem)

	// Libro de inventario
	facilities.Get("/:facility_id/stock", access, stockHandler.List)
	facilities.Get("/:facility_id/stock/:type_id", access, stockHandler.Get)
	facilities.Get("/:facility_id/stock/:type_id/movements", access, stockHandler.Movements)
	// Por cantidad: solo tipos sin unidades registradas.
	facilities.Post("/:facility_id/stock/:type_id/rent", access, stockHandler.Rent)
	facilities.Post("/:facility_id/stock/:type_id/return", access, stockHandler.Return)
	facilities.Post("/:facility_id/stock/:type_id/broken", access, stockHandler.Broken)
	facilities.Post("/:facility_id/stock/:type_id/repair", access, stockHandler.Repair)
	facilities.Post("/:facility_id/stock/:type_id/adjust", adminOnly, stockHandler.Adjust)
	facilities.Post("/:facility_id/stock/:type_id/recount", adminOnly, stockHandler.Recount)

	// Alquileres
	facilities.Post("/:facility_id/rentals", access, rentalHandler.Create)
	facilities.Get("/:facility_id/rentals", access, rentalHandler.List)
	facilities.Get("/:facility_id/rentals/:id", access, rentalHandler.GetByID)
	facilities.Post("/:facility_id/rentals/:id/return", access, rentalHandler.Return)
	facilities.Get("/:facility_id/rentals/:id/receipt", access, rentalHandler.Receipt)

	// Reparaciones
	facilities.Post("/:facility_id/repairs", access, repairHandler.Open)
	facilities.Get("/:facility_id/repairs", access, repairHandler.List)
	facilities.Get("/:facility_id/repairs/:id", access, repairHandler.GetByID)
	facilities.Patch("/:facility_id/repairs/:id", access, repairHandler.Advance)
}
