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

// InventoryUseCase alta y consulta de unidades físicas de inventario.
type InventoryUseCase struct {
	invRepo      repository.InventoryRepository
	resRepo      repository.ReservationRepository
	locationRepo repository.LocationRepository
	publisher    events.Publisher
	jobs         queue.Enqueuer
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(
	invRepo repository.InventoryRepository,
	resRepo repository.ReservationRepository,
	locationRepo repository.LocationRepository,
	publisher events.Publisher,
	jobs queue.Enqueuer,
) *InventoryUseCase {
	return &InventoryUseCase{
		invRepo:      invRepo,
		resRepo:      resRepo,
		locationRepo: locationRepo,
		publisher:    publisher,
		jobs:         jobs,
	}
}

// Register registra una unidad física en una ubicación, publica
// InventoryCreated y encola un intento de emparejamiento para la unidad.
func (uc *InventoryUseCase) Register(ctx context.Context, locationID, g string) (*dto.InventoryResponse, error) {
	if !gtin.IsValid(g) {
		return nil, domain.ErrInvalidGtin
	}
	loc, err := uc.locationRepo.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	inv := &entity.Inventory{
		ID:         uuid.New().String(),
		LocationID: locationID,
		Gtin:       g,
		CreatedAt:  time.Now(),
	}
	if err := uc.invRepo.Create(inv); err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.InventoryCreated{Inventory: inv})
	if err := uc.jobs.Enqueue(ctx, queue.Job{Type: queue.JobPairInventory, InventoryID: inv.ID}); err != nil {
		log.Error().Err(err).Str("inventory_id", inv.ID).Msg("encolar emparejamiento de unidad nueva")
	}

	return &dto.InventoryResponse{
		ID:         inv.ID,
		LocationID: inv.LocationID,
		Gtin:       inv.Gtin,
		Reserved:   false,
		CreatedAt:  inv.CreatedAt,
	}, nil
}

// GetByID obtiene una unidad; withRemoved incluye unidades retiradas.
func (uc *InventoryUseCase) GetByID(ctx context.Context, id string, withRemoved bool) (*dto.InventoryResponse, error) {
	inv, err := uc.invRepo.GetByID(id, withRemoved)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	res, err := uc.resRepo.GetByInventoryID(inv.ID)
	if err != nil {
		return nil, err
	}
	return &dto.InventoryResponse{
		ID:         inv.ID,
		LocationID: inv.LocationID,
		Gtin:       inv.Gtin,
		Reserved:   res.Exists(),
		CreatedAt:  inv.CreatedAt,
		RemovedAt:  inv.RemovedAt,
	}, nil
}

// ListByLocation lista unidades en una ubicación con paginación.
func (uc *InventoryUseCase) ListByLocation(ctx context.Context, locationID string, withRemoved bool, limit, offset int) (*dto.InventoryListResponse, error) {
	items, err := uc.invRepo.ListByLocation(locationID, withRemoved, limit, offset)
	if err != nil {
		return nil, err
	}
	resp := &dto.InventoryListResponse{Items: make([]dto.InventoryResponse, 0, len(items)), Total: len(items)}
	for _, inv := range items {
		res, err := uc.resRepo.GetByInventoryID(inv.ID)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, dto.InventoryResponse{
			ID:         inv.ID,
			LocationID: inv.LocationID,
			Gtin:       inv.Gtin,
			Reserved:   res.Exists(),
			CreatedAt:  inv.CreatedAt,
			RemovedAt:  inv.RemovedAt,
		})
	}
	return resp, nil
}
