package warehouse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/events"
	"github.com/jhoicas/Almacen-api/internal/application/queue"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/gtin"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// LineUseCase ciclo de vida de las líneas de pedido: crear, modificar
// (siempre rechazado para campos de identidad), eliminar y reemplazar.
type LineUseCase struct {
	txRunner     TxRunner
	lineRepo     repository.OrderLineRepository
	resRepo      repository.ReservationRepository
	invRepo      repository.InventoryRepository
	locationRepo repository.LocationRepository
	publisher    events.Publisher
	jobs         queue.Enqueuer
}

// NewLineUseCase construye el caso de uso.
func NewLineUseCase(
	txRunner TxRunner,
	lineRepo repository.OrderLineRepository,
	resRepo repository.ReservationRepository,
	invRepo repository.InventoryRepository,
	locationRepo repository.LocationRepository,
	publisher events.Publisher,
	jobs queue.Enqueuer,
) *LineUseCase {
	return &LineUseCase{
		txRunner:     txRunner,
		lineRepo:     lineRepo,
		resRepo:      resRepo,
		invRepo:      invRepo,
		locationRepo: locationRepo,
		publisher:    publisher,
		jobs:         jobs,
	}
}

// AddLine añade una línea de demanda al pedido: valida el gtin, persiste la
// línea y su reserva vacía en una transacción y publica OrderLineCreated
// tras el commit (el suscriptor encola el emparejamiento).
func (uc *LineUseCase) AddLine(ctx context.Context, orderID, g string) (*dto.OrderLineResponse, error) {
	if !gtin.IsValid(g) {
		return nil, domain.ErrInvalidGtin
	}

	var line *entity.OrderLine
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		lineRepo repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		_ repository.InventoryRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.IsDeleted() {
			return domain.ErrOrderDeleted
		}
		line, _, err = createLineInTx(lineRepo, resRepo, order.ID, g, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.OrderLineCreated{Line: line})

	return &dto.OrderLineResponse{
		ID:        line.ID,
		OrderID:   line.OrderID,
		Gtin:      line.Gtin,
		Fulfilled: false,
		CreatedAt: line.CreatedAt,
	}, nil
}

// UpdateLine rechaza cualquier mutación de gtin u order_id antes de tocar la
// BD. Una línea no tiene otros campos modificables, así que una petición que
// no cambia nada devuelve la línea tal cual.
func (uc *LineUseCase) UpdateLine(ctx context.Context, orderID, lineID string, in dto.UpdateLineRequest) (*dto.OrderLineResponse, error) {
	line, err := uc.lineRepo.GetByID(lineID)
	if err != nil {
		return nil, err
	}
	if line == nil || line.OrderID != orderID {
		return nil, domain.ErrNotFound
	}
	if in.Gtin != nil && *in.Gtin != line.Gtin {
		return nil, domain.ErrLineUpdateForbidden
	}
	if in.OrderID != nil && *in.OrderID != line.OrderID {
		return nil, domain.ErrLineUpdateForbidden
	}
	res, err := uc.resRepo.GetByLineID(line.ID)
	if err != nil {
		return nil, err
	}
	return &dto.OrderLineResponse{
		ID:          line.ID,
		OrderID:     line.OrderID,
		Gtin:        line.Gtin,
		Fulfilled:   res.IsFulfilled(),
		InventoryID: reservationInventory(res),
		CreatedAt:   line.CreatedAt,
	}, nil
}

// DeleteLine elimina una línea si el estado del pedido lo permite. Si la
// reserva estaba cumplida, la unidad liberada se reencola para emparejarse
// con otra demanda (PairInventory).
func (uc *LineUseCase) DeleteLine(ctx context.Context, orderID, lineID string) error {
	var freedInventory string
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		lineRepo repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		_ repository.InventoryRepository,
	) error {
		line, err := lineRepo.GetByID(lineID)
		if err != nil {
			return err
		}
		if line == nil || line.OrderID != orderID {
			return domain.ErrNotFound
		}
		order, err := orderRepo.GetByIDForUpdate(line.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Status.AllowsLineDelete() {
			return domain.ErrLineDeleteNotAllowed
		}
		res, err := resRepo.GetByLineIDForUpdate(line.ID)
		if err != nil {
			return err
		}
		if res.IsFulfilled() {
			freedInventory = *res.InventoryID
		}
		if _, err := resRepo.DeleteByLineID(line.ID); err != nil {
			return err
		}
		return lineRepo.Delete(line.ID)
	})
	if err != nil {
		return err
	}

	if freedInventory != "" {
		if err := uc.jobs.Enqueue(ctx, queue.Job{Type: queue.JobPairInventory, InventoryID: freedInventory}); err != nil {
			log.Error().Err(err).Str("inventory_id", freedInventory).Msg("encolar re-emparejamiento tras eliminar línea")
		}
	}
	return nil
}

// Replace reemplaza una línea cumplida por una nueva del mismo gtin:
// pone el pedido en hold si estaba open, crea la línea nueva (con intento de
// emparejamiento dentro de la misma transacción), retira la unidad
// reemplazada (soft remove), elimina la línea original con su reserva y, si
// el pedido quedó en hold, vuelve a ejecutar process(). Todo es atómico.
func (uc *LineUseCase) Replace(ctx context.Context, orderID, lineID string) (*dto.OrderLineResponse, error) {
	var (
		newLine    *entity.OrderLine
		newRes     *entity.Reservation
		superseded *entity.Inventory
		orderOut   *entity.Order
	)

	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		lineRepo repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		invRepo repository.InventoryRepository,
	) error {
		line, err := lineRepo.GetByID(lineID)
		if err != nil {
			return err
		}
		if line == nil || line.OrderID != orderID {
			return domain.ErrNotFound
		}
		order, err := orderRepo.GetByIDForUpdate(line.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.IsDeleted() {
			return domain.ErrOrderDeleted
		}
		res, err := resRepo.GetByLineIDForUpdate(line.ID)
		if err != nil {
			return err
		}
		if !res.IsFulfilled() {
			return domain.ErrLineNotFulfilled
		}
		inv, err := invRepo.GetByIDForUpdate(*res.InventoryID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}

		if order.Status == entity.OrderStatusOpen {
			order.TransitionTo(entity.OrderStatusHold)
			if err := orderRepo.UpdateStatus(order); err != nil {
				return err
			}
		}

		now := time.Now()
		newLine, newRes, err = createLineInTx(lineRepo, resRepo, order.ID, line.Gtin, now)
		if err != nil {
			return err
		}
		// La unidad reemplazada sigue reservada por la línea original, así
		// que el emparejamiento solo puede elegir otra unidad del gtin.
		if _, err := pairLineInTx(resRepo, invRepo, newRes, newLine.Gtin); err != nil {
			return err
		}

		if err := invRepo.SoftRemove(inv.ID, now); err != nil {
			return err
		}
		if _, err := resRepo.DeleteByLineID(line.ID); err != nil {
			return err
		}
		if err := lineRepo.Delete(line.ID); err != nil {
			return err
		}

		if order.Status == entity.OrderStatusHold {
			if err := processInTx(orderRepo, lineRepo, resRepo, order); err != nil {
				return err
			}
		}

		removed := now
		inv.RemovedAt = &removed
		superseded = inv
		orderOut = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.OrderLineCreated{Line: newLine})
	uc.publisher.Publish(ctx, events.OrderLineReplaced{Order: orderOut, Inventory: superseded, Line: newLine})
	// Reentrega deliberada: si el emparejamiento en línea ya cumplió la
	// reserva, el trabajo es un no-op (idempotencia del motor).
	if err := uc.jobs.Enqueue(ctx, queue.Job{Type: queue.JobPairOrderLine, OrderLineID: newLine.ID}); err != nil {
		log.Error().Err(err).Str("order_line_id", newLine.ID).Msg("encolar emparejamiento de línea nueva")
	}

	return &dto.OrderLineResponse{
		ID:          newLine.ID,
		OrderID:     newLine.OrderID,
		Gtin:        newLine.Gtin,
		Fulfilled:   newRes.IsFulfilled(),
		InventoryID: reservationInventory(newRes),
		CreatedAt:   newLine.CreatedAt,
	}, nil
}

// GetLineLocation resuelve la ubicación de una línea con el join explícito
// línea -> reserva -> inventario -> ubicación. El inventario retirado sigue
// siendo válido para esta consulta (auditoría).
func (uc *LineUseCase) GetLineLocation(ctx context.Context, orderID, lineID string) (*dto.LocationResponse, error) {
	line, err := uc.lineRepo.GetByID(lineID)
	if err != nil {
		return nil, err
	}
	if line == nil || line.OrderID != orderID {
		return nil, domain.ErrNotFound
	}
	res, err := uc.resRepo.GetByLineID(line.ID)
	if err != nil {
		return nil, err
	}
	if !res.IsFulfilled() {
		return nil, domain.ErrNotFound
	}
	inv, err := uc.invRepo.GetByID(*res.InventoryID, true)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	loc, err := uc.locationRepo.GetByID(inv.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.LocationResponse{
		ID:        loc.ID,
		Name:      loc.Name,
		CreatedAt: loc.CreatedAt,
		UpdatedAt: loc.UpdatedAt,
	}, nil
}

// createLineInTx persiste una línea y su reserva vacía dentro de una
// transacción ya abierta. La validación del gtin es el único paso previo a
// la escritura.
func createLineInTx(
	lineRepo repository.OrderLineRepository,
	resRepo repository.ReservationRepository,
	orderID, g string,
	now time.Time,
) (*entity.OrderLine, *entity.Reservation, error) {
	if !gtin.IsValid(g) {
		return nil, nil, domain.ErrInvalidGtin
	}
	line := &entity.OrderLine{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Gtin:      g,
		CreatedAt: now,
	}
	if err := lineRepo.Create(line); err != nil {
		return nil, nil, err
	}
	res := &entity.Reservation{
		ID:          uuid.New().String(),
		OrderLineID: line.ID,
		CreatedAt:   now,
	}
	if err := resRepo.Create(res); err != nil {
		return nil, nil, err
	}
	return line, res, nil
}
