// Package events define los eventos de dominio y el puerto de publicación.
// Los eventos se publican después del commit de la transacción que produce
// el cambio de estado; los suscriptores se registran explícitamente en el
// arranque (sin dispatch implícito).
package events

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Nombres de evento.
const (
	NameOrderLineCreated  = "order_line.created"
	NameOrderLineReplaced = "order_line.replaced"
	NameInventoryCreated  = "inventory.created"
)

// Event es un evento de dominio.
type Event interface {
	Name() string
}

// OrderLineCreated se publica tras persistir una línea nueva y su reserva.
type OrderLineCreated struct {
	Line *entity.OrderLine
}

func (OrderLineCreated) Name() string { return NameOrderLineCreated }

// OrderLineReplaced se publica tras completar un reemplazo (incluido el
// re-process del pedido si estaba en hold).
type OrderLineReplaced struct {
	Order     *entity.Order
	Inventory *entity.Inventory // unidad reemplazada (soft removed)
	Line      *entity.OrderLine // línea nueva
}

func (OrderLineReplaced) Name() string { return NameOrderLineReplaced }

// InventoryCreated se publica tras registrar una unidad de inventario.
type InventoryCreated struct {
	Inventory *entity.Inventory
}

func (InventoryCreated) Name() string { return NameInventoryCreated }

// Publisher define el puerto de publicación de eventos de dominio.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}
