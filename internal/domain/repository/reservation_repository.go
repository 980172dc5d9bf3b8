package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// ReservationRepository define el puerto de persistencia para Reservation.
// Invariantes protegidos por índices únicos: order_line_id único e
// inventory_id único cuando no es null.
type ReservationRepository interface {
	// Create persiste la reserva vacía de una línea. Idempotente: si la
	// línea ya tiene reserva no hace nada.
	Create(res *entity.Reservation) error
	GetByLineID(lineID string) (*entity.Reservation, error)
	// GetByLineIDForUpdate bloquea la fila de la reserva (FOR UPDATE NOWAIT).
	// Devuelve domain.ErrConflict si otra transacción la tiene bloqueada.
	GetByLineIDForUpdate(lineID string) (*entity.Reservation, error)
	GetByInventoryID(inventoryID string) (*entity.Reservation, error)
	// DeleteByLineID libera la reserva de una línea; devuelve filas borradas (0 o 1).
	DeleteByLineID(lineID string) (int64, error)
	// SetInventory vincula la unidad de inventario a la reserva.
	SetInventory(reservationID, inventoryID string) error
	// NextUnfulfilledByGtin devuelve la reserva sin cumplir más antigua
	// (FIFO por created_at) cuya línea pide el gtin, bloqueándola con
	// FOR UPDATE SKIP LOCKED. nil si no hay candidata.
	NextUnfulfilledByGtin(gtin string) (*entity.Reservation, error)
	// CountUnfulfilledByOrder cuenta líneas del pedido cuya reserva no está cumplida.
	CountUnfulfilledByOrder(orderID string) (int, error)
}
