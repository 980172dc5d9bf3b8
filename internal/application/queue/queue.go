// Package queue define los trabajos asíncronos de emparejamiento y el puerto
// de encolado. Los trabajos son idempotentes: una reentrega tras un
// emparejamiento exitoso es un no-op.
package queue

import "context"

// JobType identifica el tipo de trabajo.
type JobType string

const (
	// JobPairInventory reintenta emparejar una unidad de inventario con
	// demanda sin cumplir. Se dispara al registrar inventario y al eliminar
	// una línea que libera una unidad emparejada.
	JobPairInventory JobType = "pair_inventory"
	// JobPairOrderLine reintenta emparejar la reserva de una línea con
	// stock disponible. Se dispara al crear una línea.
	JobPairOrderLine JobType = "pair_order_line"
)

// Job es la carga de un trabajo de emparejamiento.
type Job struct {
	Type        JobType `json:"type"`
	InventoryID string  `json:"inventory_id,omitempty"`
	OrderLineID string  `json:"order_line_id,omitempty"`
	Attempt     int     `json:"attempt"`
}

// Enqueuer define el puerto de encolado de trabajos.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}
