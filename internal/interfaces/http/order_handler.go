package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/warehouse"
	"github.com/jhoicas/Almacen-api/internal/domain"
)

// OrderHandler maneja pedidos y sus líneas (protegido).
type OrderHandler struct {
	orders *warehouse.OrderUseCase
	lines  *warehouse.LineUseCase
}

// NewOrderHandler construye el handler de pedidos.
func NewOrderHandler(orders *warehouse.OrderUseCase, lines *warehouse.LineUseCase) *OrderHandler {
	return &OrderHandler{orders: orders, lines: lines}
}

// domainError mapea errores de dominio a códigos HTTP. Los demás handlers
// del paquete lo reutilizan.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidGtin):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_GTIN", Message: err.Error()})
	case errors.Is(err, domain.ErrLineUpdateForbidden):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LINE_IMMUTABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrLineDeleteNotAllowed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LINE_DELETE_FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrLineNotFulfilled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LINE_NOT_FULFILLED", Message: err.Error()})
	case errors.Is(err, domain.ErrOrderTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrOrderDeleted):
		return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{Code: "ORDER_DELETED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// Create godoc
// @Summary      Crear pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "gtins de las líneas iniciales (opcional)"
// @Success      201   {object}  dto.OrderResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.orders.Create(c.UserContext(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido por ID
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id            path   string  true   "ID del pedido"
// @Param        with_deleted  query  bool    false  "Incluir pedidos eliminados"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.orders.GetByID(c.UserContext(), id, c.QueryBool("with_deleted", false))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.orders.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Process godoc
// @Summary      Recalcular el estado del pedido según sus reservas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/process [post]
func (h *OrderHandler) Process(c *fiber.Ctx) error {
	out, err := h.orders.Process(c.UserContext(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Unhold godoc
// @Summary      Liberar un pedido retenido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/unhold [post]
func (h *OrderHandler) Unhold(c *fiber.Ctx) error {
	out, err := h.orders.Unhold(c.UserContext(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar pedido (soft delete, idempotente)
// @Tags         orders
// @Security     Bearer
// @Param        id  path  string  true  "ID del pedido"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.orders.Delete(c.UserContext(), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddLine godoc
// @Summary      Añadir línea de demanda a un pedido
// @Tags         order-lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del pedido"
// @Param        body  body  dto.AddLineRequest  true  "gtin"
// @Success      201   {object}  dto.OrderLineResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines [post]
func (h *OrderHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.lines.AddLine(c.UserContext(), c.Params("id"), in.Gtin)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateLine godoc
// @Summary      Modificar una línea (gtin y order_id son inmutables)
// @Tags         order-lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                 true  "ID del pedido"
// @Param        lineId  path  string                 true  "ID de la línea"
// @Param        body    body  dto.UpdateLineRequest  true  "campos a modificar"
// @Success      200   {object}  dto.OrderLineResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId} [put]
func (h *OrderHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.lines.UpdateLine(c.UserContext(), c.Params("id"), c.Params("lineId"), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// DeleteLine godoc
// @Summary      Eliminar una línea y liberar su reserva
// @Tags         order-lines
// @Security     Bearer
// @Param        id      path  string  true  "ID del pedido"
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId} [delete]
func (h *OrderHandler) DeleteLine(c *fiber.Ctx) error {
	if err := h.lines.DeleteLine(c.UserContext(), c.Params("id"), c.Params("lineId")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReplaceLine godoc
// @Summary      Reemplazar una línea cumplida por una nueva con otra unidad
// @Tags         order-lines
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del pedido"
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      201  {object}  dto.OrderLineResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId}/replace [post]
func (h *OrderHandler) ReplaceLine(c *fiber.Ctx) error {
	out, err := h.lines.Replace(c.UserContext(), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// LineLocation godoc
// @Summary      Ubicación de la unidad emparejada con la línea
// @Tags         order-lines
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del pedido"
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId}/location [get]
func (h *OrderHandler) LineLocation(c *fiber.Ctx) error {
	out, err := h.lines.GetLineLocation(c.UserContext(), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
