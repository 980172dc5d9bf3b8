package warehouse

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para toda mutación
// multi-fila del motor de reservas: ninguna aplicación parcial es observable.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		lineRepo repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		invRepo repository.InventoryRepository,
	) error) error
}
