package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/repair"
)

// RepairHandler reportes de daño y su ciclo de reparación.
type RepairHandler struct {
	uc *repair.RepairUseCase
}

// NewRepairHandler construye el handler.
func NewRepairHandler(uc *repair.RepairUseCase) *RepairHandler {
	return &RepairHandler{uc: uc}
}

// Open godoc
// @Summary      Reportar unidad dañada
// @Tags         repairs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                 true  "ID de la sede"
// @Param        body         body  dto.OpenRepairRequest  true  "Unidad y descripción"
// @Success      201  {object}  dto.RepairReportResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/repairs [post]
func (h *RepairHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenRepairRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Open(c.UserContext(), c.Params("facility_id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Advance godoc
// @Summary      Avanzar estado de la reparación
// @Tags         repairs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                    true  "ID de la sede"
// @Param        id           path  string                    true  "ID del reporte"
// @Param        body         body  dto.AdvanceRepairRequest  true  "in_progress | completed"
// @Success      200  {object}  dto.RepairReportResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/repairs/{id} [patch]
func (h *RepairHandler) Advance(c *fiber.Ctx) error {
	var in dto.AdvanceRepairRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Advance(c.UserContext(), c.Params("facility_id"), c.Params("id"), GetUserID(c), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener reporte de reparación
// @Tags         repairs
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Param        id           path  string  true  "ID del reporte"
// @Success      200  {object}  dto.RepairReportResponse
// @Router       /api/facilities/{facility_id}/repairs/{id} [get]
func (h *RepairHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("facility_id"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar reportes de reparación
// @Tags         repairs
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path   string  true   "ID de la sede"
// @Param        status       query  string  false  "reported | in_progress | completed"
// @Success      200  {object}  dto.RepairReportListResponse
// @Router       /api/facilities/{facility_id}/repairs [get]
func (h *RepairHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), c.Params("facility_id"), c.Query("status"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
