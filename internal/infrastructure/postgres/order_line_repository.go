package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.OrderLineRepository = (*OrderLineRepo)(nil)

// OrderLineRepo implementación del puerto OrderLineRepository sobre PostgreSQL.
// No hay Update: gtin y order_id son inmutables y el caso de uso rechaza la
// mutación antes de llegar aquí.
type OrderLineRepo struct {
	q Querier
}

// NewOrderLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderLineRepository(q Querier) *OrderLineRepo {
	return &OrderLineRepo{q: q}
}

// Create persiste una línea nueva.
func (r *OrderLineRepo) Create(line *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, gtin, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.OrderID, line.Gtin, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// GetByID obtiene una línea por ID.
func (r *OrderLineRepo) GetByID(id string) (*entity.OrderLine, error) {
	query := `
		SELECT id, order_id, gtin, created_at
		FROM order_lines WHERE id = $1`
	var l entity.OrderLine
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.OrderID, &l.Gtin, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order line: %w", err)
	}
	return &l, nil
}

// ListByOrder lista las líneas de un pedido por orden de creación.
func (r *OrderLineRepo) ListByOrder(orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT id, order_id, gtin, created_at
		FROM order_lines WHERE order_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Gtin, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// CountByOrder cuenta las líneas de un pedido.
func (r *OrderLineRepo) CountByOrder(orderID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM order_lines WHERE order_id = $1`, orderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count order lines: %w", err)
	}
	return count, nil
}

// Delete elimina físicamente una línea.
func (r *OrderLineRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM order_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}
	return nil
}
