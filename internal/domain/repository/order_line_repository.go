package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// OrderLineRepository define el puerto de persistencia para OrderLine (DIP).
// Las líneas se eliminan físicamente: liberar o reemplazar destruye la fila.
type OrderLineRepository interface {
	Create(line *entity.OrderLine) error
	GetByID(id string) (*entity.OrderLine, error)
	ListByOrder(orderID string) ([]*entity.OrderLine, error)
	CountByOrder(orderID string) (int, error)
	Delete(id string) error
}
