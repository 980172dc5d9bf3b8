package repository

import (
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order (DIP).
type OrderRepository interface {
	Create(order *entity.Order) error
	// GetByID devuelve nil sin error si no existe. withDeleted incluye
	// pedidos eliminados (soft delete).
	GetByID(id string, withDeleted bool) (*entity.Order, error)
	// GetByIDForUpdate bloquea la fila del pedido (SELECT FOR UPDATE).
	GetByIDForUpdate(id string) (*entity.Order, error)
	UpdateStatus(order *entity.Order) error
	// SoftDelete marca el pedido como eliminado y fija deleted_at.
	SoftDelete(order *entity.Order) error
	List(limit, offset int) ([]*entity.Order, error)
}
