package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/device-rental-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el estado de la sede.
// GET /api/facilities/:facility_id/dashboard
//
// Respuesta: DashboardSummaryDTO (total, available, rented, broken, utilization_pct,
// open_repairs, active_rentals, overdue_rentals, by_type[]).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), c.Params("facility_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
