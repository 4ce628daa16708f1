package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// StockHandler expone el libro de inventario por (sede, tipo).
type StockHandler struct {
	uc *ledger.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.LedgerUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// List godoc
// @Summary      Contadores de todos los tipos de una sede
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Success      200  {array}  dto.StockResponse
// @Router       /api/facilities/{facility_id}/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListStock(c.UserContext(), c.Params("facility_id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStockResponse(s))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Contadores de un tipo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Param        type_id      path  string  true  "ID del tipo"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	s, err := h.uc.GetStock(c.UserContext(), c.Params("facility_id"), c.Params("type_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(s))
}

// Movements godoc
// @Summary      Diario de movimientos de un tipo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path   string  true   "ID de la sede"
// @Param        type_id      path   string  true   "ID del tipo"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockMovementListResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.uc.ListMovements(c.UserContext(), c.Params("facility_id"), c.Params("type_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.StockMovementResponse{
			ID:           m.ID,
			DeviceTypeID: m.DeviceTypeID,
			Type:         m.Type,
			Quantity:     m.Quantity,
			Total:        m.Total,
			Available:    m.Available,
			Rented:       m.Rented,
			Broken:       m.Broken,
			Reference:    m.Reference,
			Reason:       m.Reason,
			CreatedBy:    m.CreatedBy,
			CreatedAt:    m.CreatedAt,
		})
	}
	return c.JSON(dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	})
}

// Rent godoc
// @Summary      Alquilar unidades sin alquiler asociado
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                    true  "ID de la sede"
// @Param        type_id      path  string                    true  "ID del tipo"
// @Param        body         body  dto.StockQuantityRequest  true  "Cantidad"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id}/rent [post]
func (h *StockHandler) Rent(c *fiber.Ctx) error {
	return h.quantityOp(c, h.uc.RentDevices)
}

// Return godoc
// @Summary      Devolver unidades
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                    true  "ID de la sede"
// @Param        type_id      path  string                    true  "ID del tipo"
// @Param        body         body  dto.StockQuantityRequest  true  "Cantidad"
// @Success      200  {object}  dto.StockResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id}/return [post]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	return h.quantityOp(c, h.uc.ReturnDevices)
}

// Repair godoc
// @Summary      Completar reparación de unidades
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                    true  "ID de la sede"
// @Param        type_id      path  string                    true  "ID del tipo"
// @Param        body         body  dto.StockQuantityRequest  true  "Cantidad"
// @Success      200  {object}  dto.StockResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id}/repair [post]
func (h *StockHandler) Repair(c *fiber.Ctx) error {
	return h.quantityOp(c, h.uc.CompleteRepair)
}

// Broken godoc
// @Summary      Reportar unidades dañadas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                   true  "ID de la sede"
// @Param        type_id      path  string                   true  "ID del tipo"
// @Param        body         body  dto.ReportBrokenRequest  true  "Cantidad y origen"
// @Success      200  {object}  dto.StockResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id}/broken [post]
func (h *StockHandler) Broken(c *fiber.Ctx) error {
	var in dto.ReportBrokenRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	s, err := h.uc.ReportBroken(c.UserContext(), ledger.StockInput{
		FacilityID:   c.Params("facility_id"),
		DeviceTypeID: c.Params("type_id"),
		UserID:       GetUserID(c),
		Quantity:     in.Quantity,
		FromRented:   in.FromRented,
		Reference:    in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(s))
}

// Adjust godoc
// @Summary      Ajuste administrativo del total
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility_id  path  string                  true  "ID de la sede"
// @Param        type_id      path  string                  true  "ID del tipo"
// @Param        body         body  dto.AdjustStockRequest  true  "Nuevo total y motivo"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id}/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	s, err := h.uc.AdjustStock(c.UserContext(), ledger.AdjustInput{
		FacilityID:   c.Params("facility_id"),
		DeviceTypeID: c.Params("type_id"),
		UserID:       GetUserID(c),
		NewTotal:     in.NewTotal,
		Reason:       in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(s))
}

// Recount godoc
// @Summary      Reconstruir contadores desde las unidades registradas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        facility_id  path  string  true  "ID de la sede"
// @Param        type_id      path  string  true  "ID del tipo"
// @Success      200  {object}  dto.RecountResponse
// @Router       /api/facilities/{facility_id}/stock/{type_id}/recount [post]
func (h *StockHandler) Recount(c *fiber.Ctx) error {
	res, err := h.uc.RecountStock(c.UserContext(), c.Params("facility_id"), c.Params("type_id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RecountResponse{
		Before:  toStockResponse(&res.Before),
		After:   toStockResponse(&res.After),
		Changed: res.Changed,
	})
}

func (h *StockHandler) quantityOp(c *fiber.Ctx, op func(ctx context.Context, in ledger.StockInput) (*entity.DeviceStock, error)) error {
	var in dto.StockQuantityRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	s, err := op(c.UserContext(), ledger.StockInput{
		FacilityID:   c.Params("facility_id"),
		DeviceTypeID: c.Params("type_id"),
		UserID:       GetUserID(c),
		Quantity:     in.Quantity,
		Reference:    in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(s))
}

func toStockResponse(s *entity.DeviceStock) dto.StockResponse {
	return dto.StockResponse{
		FacilityID:   s.FacilityID,
		DeviceTypeID: s.DeviceTypeID,
		Total:        s.Total,
		Available:    s.Available,
		Rented:       s.Rented,
		Broken:       s.Broken,
		Version:      s.Version,
		UpdatedAt:    s.UpdatedAt,
	}
}
