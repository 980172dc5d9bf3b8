package warehouse

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// PairingUseCase es el motor de emparejamiento: vincula una unidad de
// inventario disponible con la reserva sin cumplir más antigua del mismo
// gtin (o a la inversa). Cada emparejamiento ocurre en una transacción con
// las dos filas candidatas bloqueadas; la ausencia de pareja no es un error
// sino el estado estable cuando oferta y demanda están desbalanceadas.
type PairingUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	lineRepo  repository.OrderLineRepository
	orders    *OrderUseCase
}

// NewPairingUseCase construye el motor.
func NewPairingUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	lineRepo repository.OrderLineRepository,
	orders *OrderUseCase,
) *PairingUseCase {
	return &PairingUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		orders:    orders,
	}
}

// PairInventory intenta emparejar una unidad de inventario con demanda sin
// cumplir. Reentregable: si la unidad ya está reservada o retirada, no hace
// nada. Un fallo de bloqueo se devuelve como domain.ErrConflict para que la
// cola reintente.
func (uc *PairingUseCase) PairInventory(ctx context.Context, inventoryID string) error {
	var pairedLine string
	err := uc.txRunner.Run(ctx, func(
		_ repository.OrderRepository,
		_ repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		invRepo repository.InventoryRepository,
	) error {
		inv, err := invRepo.GetByIDForUpdate(inventoryID)
		if err != nil {
			return err
		}
		if inv == nil || inv.IsRemoved() {
			log.Debug().Str("inventory_id", inventoryID).Msg("unidad inexistente o retirada, sin emparejar")
			return nil
		}
		existing, err := resRepo.GetByInventoryID(inv.ID)
		if err != nil {
			return err
		}
		if existing.Exists() {
			// Reentrega tras un emparejamiento previo: no-op.
			return nil
		}
		candidate, err := resRepo.NextUnfulfilledByGtin(inv.Gtin)
		if err != nil {
			return err
		}
		if candidate == nil {
			return nil
		}
		if err := resRepo.SetInventory(candidate.ID, inv.ID); err != nil {
			return err
		}
		pairedLine = candidate.OrderLineID
		return nil
	})
	if err != nil {
		return err
	}
	if pairedLine == "" {
		return nil
	}
	log.Info().Str("inventory_id", inventoryID).Str("order_line_id", pairedLine).Msg("unidad emparejada con reserva")
	return uc.resettleOrder(ctx, pairedLine)
}

// PairOrderLine intenta emparejar la reserva de una línea con una unidad
// disponible del mismo gtin. Reentregable: si la reserva ya está cumplida o
// la línea ya no existe, no hace nada.
func (uc *PairingUseCase) PairOrderLine(ctx context.Context, lineID string) error {
	var paired bool
	err := uc.txRunner.Run(ctx, func(
		_ repository.OrderRepository,
		lineRepo repository.OrderLineRepository,
		resRepo repository.ReservationRepository,
		invRepo repository.InventoryRepository,
	) error {
		res, err := resRepo.GetByLineIDForUpdate(lineID)
		if err != nil {
			return err
		}
		if !res.Exists() {
			// La línea se eliminó antes de procesar el trabajo.
			return nil
		}
		if res.IsFulfilled() {
			return nil
		}
		line, err := lineRepo.GetByID(lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return nil
		}
		inv, err := pairLineInTx(resRepo, invRepo, res, line.Gtin)
		if err != nil {
			return err
		}
		paired = inv != nil
		return nil
	})
	if err != nil {
		return err
	}
	if !paired {
		return nil
	}
	log.Info().Str("order_line_id", lineID).Msg("reserva de línea cumplida con stock existente")
	return uc.resettleOrder(ctx, lineID)
}

// resettleOrder vuelve a ejecutar process() sobre el pedido de la línea si
// estaba en backorder, para que un emparejamiento tardío lo saque de ese
// estado (backorder -> open/fulfilled).
func (uc *PairingUseCase) resettleOrder(ctx context.Context, lineID string) error {
	line, err := uc.lineRepo.GetByID(lineID)
	if err != nil || line == nil {
		return err
	}
	order, err := uc.orderRepo.GetByID(line.OrderID, false)
	if err != nil || order == nil {
		return err
	}
	if order.Status != entity.OrderStatusBackorder {
		return nil
	}
	if _, err := uc.orders.Process(ctx, order.ID); err != nil {
		return err
	}
	return nil
}

// pairLineInTx busca una unidad disponible del gtin y la vincula a la
// reserva, dentro de una transacción ya abierta y con la reserva bloqueada
// por el llamador. Devuelve nil sin error si no hay stock.
func pairLineInTx(
	resRepo repository.ReservationRepository,
	invRepo repository.InventoryRepository,
	res *entity.Reservation,
	gtin string,
) (*entity.Inventory, error) {
	inv, err := invRepo.NextAvailableByGtin(gtin)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, nil
	}
	if err := resRepo.SetInventory(res.ID, inv.ID); err != nil {
		return nil, err
	}
	res.InventoryID = &inv.ID
	return inv, nil
}

// IsTransient indica si un error de emparejamiento debe reintentarse.
func IsTransient(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
