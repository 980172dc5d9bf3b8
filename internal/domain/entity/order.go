package entity

import "time"

// Estados del ciclo de vida de un pedido.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusBackorder OrderStatus = "backorder"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusHold      OrderStatus = "hold"
	OrderStatusDeleted   OrderStatus = "deleted"
)

// transitions define las transiciones legales entre estados.
// Quedarse en el mismo estado siempre es legal (no-op).
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:   {OrderStatusOpen, OrderStatusBackorder, OrderStatusFulfilled, OrderStatusDeleted},
	OrderStatusOpen:      {OrderStatusBackorder, OrderStatusFulfilled, OrderStatusHold, OrderStatusDeleted},
	OrderStatusBackorder: {OrderStatusOpen, OrderStatusFulfilled, OrderStatusDeleted},
	OrderStatusFulfilled: {OrderStatusOpen, OrderStatusBackorder, OrderStatusDeleted},
	OrderStatusHold:      {OrderStatusOpen, OrderStatusBackorder, OrderStatusFulfilled, OrderStatusDeleted},
	OrderStatusDeleted:   {},
}

// Valid indica si el valor pertenece a la enumeración.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo indica si la transición s -> target es legal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return true
	}
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowsLineDelete indica si con este estado se permite eliminar líneas.
// open y fulfilled representan compromisos externos y bloquean la eliminación.
func (s OrderStatus) AllowsLineDelete() bool {
	return s != OrderStatusOpen && s != OrderStatusFulfilled
}

// Order representa un pedido: agrupa líneas de demanda bajo un estado.
type Order struct {
	ID        string
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// TransitionTo cambia el estado validando la tabla de transiciones.
func (o *Order) TransitionTo(target OrderStatus) bool {
	if !o.Status.CanTransitionTo(target) {
		return false
	}
	o.Status = target
	return true
}

// IsDeleted indica si el pedido fue eliminado (soft delete).
func (o *Order) IsDeleted() bool {
	return o.DeletedAt != nil || o.Status == OrderStatusDeleted
}

// ResolveStatus calcula el estado resultante de process() a partir del
// snapshot de cumplimiento: función pura de (número de líneas, no cumplidas).
func ResolveStatus(lineCount, unfulfilled int) OrderStatus {
	switch {
	case lineCount == 0:
		return OrderStatusOpen
	case unfulfilled > 0:
		return OrderStatusBackorder
	default:
		return OrderStatusFulfilled
	}
}
