package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste un pedido nuevo.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, string(order.Status), order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID. withDeleted incluye eliminados (soft delete).
func (r *OrderRepo) GetByID(id string, withDeleted bool) (*entity.Order, error) {
	query := `
		SELECT id, status, created_at, updated_at, deleted_at
		FROM orders WHERE id = $1`
	if !withDeleted {
		query += ` AND deleted_at IS NULL`
	}
	return r.scanOne(query, id)
}

// GetByIDForUpdate obtiene el pedido bloqueando la fila (SELECT FOR UPDATE).
// Incluye eliminados: el llamador distingue entre "no existe" y "eliminado".
func (r *OrderRepo) GetByIDForUpdate(id string) (*entity.Order, error) {
	query := `
		SELECT id, status, created_at, updated_at, deleted_at
		FROM orders WHERE id = $1
		FOR UPDATE`
	return r.scanOne(query, id)
}

// UpdateStatus persiste el estado del pedido.
func (r *OrderRepo) UpdateStatus(order *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, order.ID, string(order.Status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el pedido como eliminado y fija deleted_at.
func (r *OrderRepo) SoftDelete(order *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, deleted_at = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.q.Exec(context.Background(), query, order.ID, string(entity.OrderStatusDeleted), order.DeletedAt)
	if err != nil {
		return fmt.Errorf("soft delete order: %w", err)
	}
	return nil
}

// List lista pedidos no eliminados con paginación.
func (r *OrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, status, created_at, updated_at, deleted_at
		FROM orders WHERE deleted_at IS NULL
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var status string
		if err := rows.Scan(&o.ID, &status, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = entity.OrderStatus(status)
		list = append(list, &o)
	}
	return list, rows.Err()
}

func (r *OrderRepo) scanOne(query string, args ...any) (*entity.Order, error) {
	var o entity.Order
	var status string
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&o.ID, &status, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}
