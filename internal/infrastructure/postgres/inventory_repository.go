package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación del puerto InventoryRepository sobre PostgreSQL.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Create persiste una unidad nueva.
func (r *InventoryRepo) Create(inv *entity.Inventory) error {
	query := `
		INSERT INTO inventory (id, location_id, gtin, created_at, removed_at)
		VALUES ($1, $2, $3, $4, NULL)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.LocationID, inv.Gtin, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID. withRemoved incluye retiradas
// (necesarias para la consulta de ubicación/auditoría).
func (r *InventoryRepo) GetByID(id string, withRemoved bool) (*entity.Inventory, error) {
	query := `
		SELECT id, location_id, gtin, created_at, removed_at
		FROM inventory WHERE id = $1`
	if !withRemoved {
		query += ` AND removed_at IS NULL`
	}
	return r.scanOne(query, id)
}

// GetByIDForUpdate bloquea la fila de la unidad (FOR UPDATE NOWAIT); incluye
// retiradas. Devuelve ErrConflict si otra transacción la tiene bloqueada.
func (r *InventoryRepo) GetByIDForUpdate(id string) (*entity.Inventory, error) {
	query := `
		SELECT id, location_id, gtin, created_at, removed_at
		FROM inventory WHERE id = $1
		FOR UPDATE NOWAIT`
	inv, err := r.scanOne(query, id)
	if err != nil && isTransientConflict(err) {
		return nil, fmt.Errorf("unidad bloqueada: %w", domain.ErrConflict)
	}
	return inv, err
}

// NextAvailableByGtin devuelve una unidad disponible del gtin: no retirada y
// sin reserva que la referencie. FOR UPDATE SKIP LOCKED evita que dos
// emparejadores tomen la misma unidad.
func (r *InventoryRepo) NextAvailableByGtin(gtin string) (*entity.Inventory, error) {
	query := `
		SELECT i.id, i.location_id, i.gtin, i.created_at, i.removed_at
		FROM inventory i
		WHERE i.gtin = $1
		  AND i.removed_at IS NULL
		  AND NOT EXISTS (SELECT 1 FROM reservations r WHERE r.inventory_id = i.id)
		ORDER BY i.created_at, i.id
		FOR UPDATE OF i SKIP LOCKED
		LIMIT 1`
	return r.scanOne(query, gtin)
}

// SoftRemove marca la unidad como consumida fijando removed_at.
func (r *InventoryRepo) SoftRemove(id string, at time.Time) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE inventory SET removed_at = $2
		WHERE id = $1 AND removed_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("soft remove inventory: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByLocation lista unidades de una ubicación con paginación.
func (r *InventoryRepo) ListByLocation(locationID string, withRemoved bool, limit, offset int) ([]*entity.Inventory, error) {
	query := `
		SELECT id, location_id, gtin, created_at, removed_at
		FROM inventory WHERE location_id = $1`
	if !withRemoved {
		query += ` AND removed_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	var list []*entity.Inventory
	for rows.Next() {
		var inv entity.Inventory
		if err := rows.Scan(&inv.ID, &inv.LocationID, &inv.Gtin, &inv.CreatedAt, &inv.RemovedAt); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

func (r *InventoryRepo) scanOne(query string, args ...any) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&inv.ID, &inv.LocationID, &inv.Gtin, &inv.CreatedAt, &inv.RemovedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &inv, nil
}
