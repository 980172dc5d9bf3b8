package repository

import (
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// InventoryRepository define el puerto de persistencia para Inventory.
type InventoryRepository interface {
	Create(inv *entity.Inventory) error
	// GetByID devuelve nil sin error si no existe. withRemoved incluye
	// unidades retiradas (soft remove), necesarias para auditoría/ubicación.
	GetByID(id string, withRemoved bool) (*entity.Inventory, error)
	// GetByIDForUpdate bloquea la fila (FOR UPDATE NOWAIT); incluye retiradas.
	// Devuelve domain.ErrConflict si otra transacción la tiene bloqueada.
	GetByIDForUpdate(id string) (*entity.Inventory, error)
	// NextAvailableByGtin devuelve una unidad disponible del gtin: no
	// retirada y no referenciada por ninguna reserva, bloqueada con
	// FOR UPDATE SKIP LOCKED. nil si no hay stock.
	NextAvailableByGtin(gtin string) (*entity.Inventory, error)
	// SoftRemove marca la unidad como consumida fijando removed_at.
	SoftRemove(id string, at time.Time) error
	ListByLocation(locationID string, withRemoved bool, limit, offset int) ([]*entity.Inventory, error)
}
