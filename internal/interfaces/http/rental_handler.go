package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

// RentalHandler alquileres de una sede.
type RentalHandler struct {
	uc *rental.RentalUseCase
}

// NewRentalHandler construye el handler.
func NewRentalHandler(uc *rental.RentalUseCase) *RentalHandler {
	return &RentalHandler{uc: uc}
}

// Create godoc
// @Summary      Abrir alquiler (todas las líneas o ninguna)
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                   true  "ID de la sede"
// @Param        body         body  dto.CreateRentalRequest  true  "Prestatario, fechas y líneas"
// @Success      201  {object}  dto.RentalResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/rentals [post]
func (h *RentalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRentalRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), c.Params("facility_id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Return godoc
// @Summary      Cerrar alquiler devolviendo todas sus líneas
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Param        id           path  string  true  "ID del alquiler"
// @Success      200  {object}  dto.RentalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/rentals/{id}/return [post]
func (h *RentalHandler) Return(c *fiber.Ctx) error {
	out, err := h.uc.Return(c.UserContext(), c.Params("facility_id"), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener alquiler
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Param        id           path  string  true  "ID del alquiler"
// @Success      200  {object}  dto.RentalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/rentals/{id} [get]
func (h *RentalHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("facility_id"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar alquileres
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path   string  true   "ID de la sede"
// @Param        status       query  string  false  "active | returned"
// @Param        overdue      query  bool    false  "Solo vencidos"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.RentalListResponse
// @Router       /api/facilities/{facility_id}/rentals [get]
func (h *RentalHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), repository.RentalFilter{
		FacilityID: c.Params("facility_id"),
		Status:     c.Query("status"),
		Limit:      limit,
		Offset:     offset,
	}, c.QueryBool("overdue", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF del alquiler
// @Tags         rentals
// @Security     Bearer
// @Produce      application/pdf
// @Param        facility_id  path  string  true  "ID de la sede"
// @Param        id           path  string  true  "ID del alquiler"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/rentals/{id}/receipt [get]
func (h *RentalHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Receipt(c.UserContext(), c.Params("facility_id"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
