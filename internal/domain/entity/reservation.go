package entity

import "time"

// Reservation une una unidad de demanda (línea de pedido) con, una vez
// emparejada, una unidad de oferta (inventario). Cada línea posee exactamente
// una reserva, creada en el mismo instante que la línea.
type Reservation struct {
	ID          string
	OrderLineID string
	InventoryID *string
	CreatedAt   time.Time
}

// Los predicados aceptan receptor nil: la "reserva inexistente" se representa
// como valor concreto en vez de ramificar por relación ausente.

// Exists indica si la reserva está persistida.
func (r *Reservation) Exists() bool {
	return r != nil && r.ID != ""
}

// IsFulfilled indica si la reserva tiene ambos lados (demanda y oferta).
func (r *Reservation) IsFulfilled() bool {
	return r != nil && r.OrderLineID != "" && r.InventoryID != nil && *r.InventoryID != ""
}
