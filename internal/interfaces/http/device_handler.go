package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

// DeviceHandler tipos de dispositivo y unidades físicas de una sede.
type DeviceHandler struct {
	uc *usecase.DeviceUseCase
}

// NewDeviceHandler construye el handler.
func NewDeviceHandler(uc *usecase.DeviceUseCase) *DeviceHandler {
	return &DeviceHandler{uc: uc}
}

// CreateType godoc
// @Summary      Crear tipo de dispositivo (con fila de stock en cero)
// @Tags         devices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                       true  "ID de la sede"
// @Param        body         body  dto.CreateDeviceTypeRequest  true  "Categoría y nombre"
// @Success      201  {object}  dto.DeviceTypeResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/device-types [post]
func (h *DeviceHandler) CreateType(c *fiber.Ctx) error {
	var in dto.CreateDeviceTypeRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateType(c.UserContext(), c.Params("facility_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTypes godoc
// @Summary      Listar tipos de dispositivo
// @Tags         devices
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Success      200  {array}  dto.DeviceTypeResponse
// @Router       /api/facilities/{facility_id}/device-types [get]
func (h *DeviceHandler) ListTypes(c *fiber.Ctx) error {
	out, err := h.uc.ListTypes(c.UserContext(), c.Params("facility_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RegisterItem godoc
// @Summary      Registrar unidad física (total+1, available+1)
// @Tags         devices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                         true  "ID de la sede"
// @Param        body         body  dto.RegisterDeviceItemRequest  true  "Tipo y serial"
// @Success      201  {object}  dto.DeviceItemResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/items [post]
func (h *DeviceHandler) RegisterItem(c *fiber.Ctx) error {
	var in dto.RegisterDeviceItemRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RegisterItem(c.UserContext(), c.Params("facility_id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetItem godoc
// @Summary      Obtener unidad
// @Tags         devices
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Param        id           path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.DeviceItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/items/{id} [get]
func (h *DeviceHandler) GetItem(c *fiber.Ctx) error {
	out, err := h.uc.GetItem(c.UserContext(), c.Params("facility_id"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListItems godoc
// @Summary      Listar unidades por tipo y estado
// @Tags         devices
// @Security     Bearer
// @Produce      json
// @Param        facility_id     path   string  true   "ID de la sede"
// @Param        device_type_id  query  string  false  "Tipo"
// @Param        status          query  string  false  "available | rented | broken"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.DeviceItemListResponse
// @Router       /api/facilities/{facility_id}/items [get]
func (h *DeviceHandler) ListItems(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListItems(c.UserContext(), repository.DeviceItemFilter{
		FacilityID:   c.Params("facility_id"),
		DeviceTypeID: c.Query("device_type_id"),
		Status:       c.Query("status"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
