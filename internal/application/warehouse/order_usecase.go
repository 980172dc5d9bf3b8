package warehouse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/events"
	"github.com/jhoicas/Almacen-api/internal/application/queue"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/gtin"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// OrderUseCase casos de uso del ciclo de vida del pedido: creación,
// consulta, process(), unhold y eliminación (soft delete).
type OrderUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	lineRepo  repository.OrderLineRepository
	resRepo   repository.ReservationRepository
	publisher events.Publisher
	jobs      queue.Enqueuer
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	lineRepo repository.OrderLineRepository,
	resRepo repository.ReservationRepository,
	publisher events.Publisher,
	jobs queue.Enqueuer,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		resRepo:   resRepo,
		publisher: publisher,
		jobs:      jobs,
	}
}

// Create crea un pedido en estado created con sus líneas iniciales y la
// reserva vacía de cada línea, todo en una transacción. Tras el commit
// publica OrderLineCreated por cada línea para disparar el emparejamiento.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	// Validación completa antes de escribir nada.
	for _, g := range in.Lines {
		if !gtin.IsValid(g) {
			return nil, domain.ErrInvalidGtin
		}
	}

	now := time.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		Status:    entity.OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var lines []*entity.OrderLine

	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		lineRepo repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		_ repository.InventoryRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, g := range in.Lines {
			line, _, err := createLineInTx(lineRepo, resRepo, order.ID, g, now)
			if err != nil {
				return err
			}
			lines = append(lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		uc.publisher.Publish(ctx, events.OrderLineCreated{Line: line})
	}

	resp := &dto.OrderResponse{
		ID:        order.ID,
		Status:    string(order.Status),
		Lines:     make([]dto.OrderLineResponse, 0, len(lines)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:      line.ID,
			OrderID: line.OrderID,
			Gtin:    line.Gtin,
			// recién creadas: la reserva existe pero aún no tiene inventario
			Fulfilled: false,
			CreatedAt: line.CreatedAt,
		})
	}
	return resp, nil
}

// GetByID obtiene el pedido con sus líneas y el estado de cumplimiento de
// cada reserva. withDeleted incluye pedidos eliminados.
func (uc *OrderUseCase) GetByID(ctx context.Context, id string, withDeleted bool) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id, withDeleted)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.lineRepo.ListByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrderResponse{
		ID:        order.ID,
		Status:    string(order.Status),
		Lines:     make([]dto.OrderLineResponse, 0, len(lines)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
		DeletedAt: order.DeletedAt,
	}
	for _, line := range lines {
		res, err := uc.resRepo.GetByLineID(line.ID)
		if err != nil {
			return nil, err
		}
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:          line.ID,
			OrderID:     line.OrderID,
			Gtin:        line.Gtin,
			Fulfilled:   res.IsFulfilled(),
			InventoryID: reservationInventory(res),
			CreatedAt:   line.CreatedAt,
		})
	}
	return resp, nil
}

// Process evalúa todas las líneas y resuelve el estado del pedido:
// fulfilled si todas las reservas están cumplidas, backorder si falta
// alguna, open si no hay líneas. La evaluación y la transición ocurren en
// la misma transacción, con la fila del pedido bloqueada.
func (uc *OrderUseCase) Process(ctx context.Context, id string) (*dto.OrderResponse, error) {
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		lineRepo repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		_ repository.InventoryRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.IsDeleted() {
			return domain.ErrOrderDeleted
		}
		return processInTx(orderRepo, lineRepo, resRepo, order)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id, false)
}

// Unhold reanuda un pedido en espera (hold -> open).
func (uc *OrderUseCase) Unhold(ctx context.Context, id string) (*dto.OrderResponse, error) {
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.OrderLineRepository,
		_ repository.ReservationRepository,
		_ repository.InventoryRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status != entity.OrderStatusHold {
			return domain.ErrOrderTransition
		}
		order.TransitionTo(entity.OrderStatusOpen)
		return orderRepo.UpdateStatus(order)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id, false)
}

// Delete elimina el pedido (soft delete); estado terminal deleted.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.OrderLineRepository,
		_ repository.ReservationRepository,
		_ repository.InventoryRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.IsDeleted() {
			return nil
		}
		order.TransitionTo(entity.OrderStatusDeleted)
		now := time.Now()
		order.DeletedAt = &now
		return orderRepo.SoftDelete(order)
	})
}

// List lista pedidos con paginación.
func (uc *OrderUseCase) List(ctx context.Context, limit, offset int) (*dto.OrderListResponse, error) {
	orders, err := uc.orderRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrderListResponse{Items: make([]dto.OrderResponse, 0, len(orders)), Total: len(orders)}
	for _, o := range orders {
		resp.Items = append(resp.Items, dto.OrderResponse{
			ID:        o.ID,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
			DeletedAt: o.DeletedAt,
		})
	}
	return resp, nil
}

// processInTx resuelve y persiste el estado del pedido dentro de una
// transacción ya abierta, con la fila del pedido bloqueada por el llamador.
func processInTx(
	orderRepo repository.OrderRepository,
	lineRepo repository.OrderLineRepository,
	resRepo repository.ReservationRepository,
	order *entity.Order,
) error {
	count, err := lineRepo.CountByOrder(order.ID)
	if err != nil {
		return err
	}
	unfulfilled, err := resRepo.CountUnfulfilledByOrder(order.ID)
	if err != nil {
		return err
	}
	target := entity.ResolveStatus(count, unfulfilled)
	if !order.TransitionTo(target) {
		return domain.ErrOrderTransition
	}
	return orderRepo.UpdateStatus(order)
}

func reservationInventory(res *entity.Reservation) *string {
	if res == nil {
		return nil
	}
	return res.InventoryID
}
