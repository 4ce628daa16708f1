package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
)

// FacilityHandler maneja las peticiones HTTP para sedes.
type FacilityHandler struct {
	uc *usecase.FacilityUseCase
}

// NewFacilityHandler construye el handler.
func NewFacilityHandler(uc *usecase.FacilityUseCase) *FacilityHandler {
	return &FacilityHandler{uc: uc}
}

// Create godoc
// @Summary      Crear sede
// @Tags         facilities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateFacilityRequest  true  "Datos de la sede"
// @Success      201   {object}  dto.FacilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facilities [post]
func (h *FacilityHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFacilityRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener sede por ID
// @Tags         facilities
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Success      200  {object}  dto.FacilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id} [get]
func (h *FacilityHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("facility_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar sede
// @Tags         facilities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                     true  "ID de la sede"
// @Param        body         body  dto.UpdateFacilityRequest  true  "Campos a cambiar"
// @Success      200  {object}  dto.FacilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id} [put]
func (h *FacilityHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateFacilityRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("facility_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar sedes
// @Tags         facilities
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.FacilityListResponse
// @Router       /api/facilities [get]
func (h *FacilityHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
