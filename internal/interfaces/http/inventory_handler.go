package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/warehouse"
)

// InventoryHandler maneja unidades de inventario (protegido).
type InventoryHandler struct {
	uc *warehouse.InventoryUseCase
}

// NewInventoryHandler construye el handler de inventario.
func NewInventoryHandler(uc *warehouse.InventoryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar una unidad física en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        locationId  path  string                        true  "ID de la ubicación"
// @Param        body        body  dto.RegisterInventoryRequest  true  "gtin"
// @Success      201  {object}  dto.InventoryResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/inventory [post]
func (h *InventoryHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Register(c.UserContext(), c.Params("locationId"), in.Gtin)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener unidad de inventario por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id            path   string  true   "ID de la unidad"
// @Param        with_removed  query  bool    false  "Incluir unidades retiradas"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.UserContext(), id, c.QueryBool("with_removed", false))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ListByLocation godoc
// @Summary      Listar unidades de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        locationId    path   string  true   "ID de la ubicación"
// @Param        with_removed  query  bool    false  "Incluir unidades retiradas"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/locations/{locationId}/inventory [get]
func (h *InventoryHandler) ListByLocation(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.ListByLocation(c.UserContext(), c.Params("locationId"), c.QueryBool("with_removed", false), page.Limit, page.Offset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
