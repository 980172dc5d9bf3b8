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

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación del puerto ReservationRepository sobre PostgreSQL.
// Los índices únicos sobre order_line_id y sobre inventory_id (parcial, WHERE
// inventory_id IS NOT NULL) hacen cumplir "como máximo una reserva por unidad"
// incluso bajo emparejamientos concurrentes.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste la reserva vacía de una línea. Idempotente: si la línea ya
// tiene reserva (order_line_id único), no hace nada.
func (r *ReservationRepo) Create(res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, order_line_id, inventory_id, created_at)
		VALUES ($1, $2, NULL, $3)
		ON CONFLICT (order_line_id) DO NOTHING`
	_, err := r.q.Exec(context.Background(), query, res.ID, res.OrderLineID, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetByLineID obtiene la reserva de una línea; nil si no existe.
func (r *ReservationRepo) GetByLineID(lineID string) (*entity.Reservation, error) {
	query := `
		SELECT id, order_line_id, inventory_id, created_at
		FROM reservations WHERE order_line_id = $1`
	return r.scanOne(query, lineID)
}

// GetByLineIDForUpdate obtiene la reserva bloqueando la fila con
// FOR UPDATE NOWAIT: si otra transacción la tiene, devuelve ErrConflict
// para que el trabajo se reencole en vez de esperar.
func (r *ReservationRepo) GetByLineIDForUpdate(lineID string) (*entity.Reservation, error) {
	query := `
		SELECT id, order_line_id, inventory_id, created_at
		FROM reservations WHERE order_line_id = $1
		FOR UPDATE NOWAIT`
	res, err := r.scanOne(query, lineID)
	if err != nil && isTransientConflict(err) {
		return nil, fmt.Errorf("reserva bloqueada: %w", domain.ErrConflict)
	}
	return res, err
}

// GetByInventoryID obtiene la reserva que referencia una unidad; nil si la
// unidad está libre.
func (r *ReservationRepo) GetByInventoryID(inventoryID string) (*entity.Reservation, error) {
	query := `
		SELECT id, order_line_id, inventory_id, created_at
		FROM reservations WHERE inventory_id = $1`
	return r.scanOne(query, inventoryID)
}

// DeleteByLineID libera la reserva de una línea; devuelve filas borradas (0 o 1).
func (r *ReservationRepo) DeleteByLineID(lineID string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM reservations WHERE order_line_id = $1`, lineID)
	if err != nil {
		return 0, fmt.Errorf("delete reservation: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// SetInventory vincula la unidad a la reserva. La condición inventory_id IS
// NULL y el índice único parcial garantizan que dos emparejamientos
// concurrentes no asignen dos veces: el perdedor recibe ErrConflict.
func (r *ReservationRepo) SetInventory(reservationID, inventoryID string) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE reservations SET inventory_id = $2
		WHERE id = $1 AND inventory_id IS NULL`,
		reservationID, inventoryID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("unidad ya reservada: %w", domain.ErrConflict)
		}
		return fmt.Errorf("set reservation inventory: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("reserva ya cumplida: %w", domain.ErrConflict)
	}
	return nil
}

// NextUnfulfilledByGtin devuelve la reserva sin cumplir más antigua (FIFO por
// created_at) cuya línea demanda el gtin. FOR UPDATE SKIP LOCKED: los
// emparejadores concurrentes no compiten por la misma candidata.
func (r *ReservationRepo) NextUnfulfilledByGtin(gtin string) (*entity.Reservation, error) {
	query := `
		SELECT r.id, r.order_line_id, r.inventory_id, r.created_at
		FROM reservations r
		JOIN order_lines l ON l.id = r.order_line_id
		WHERE r.inventory_id IS NULL AND l.gtin = $1
		ORDER BY r.created_at, r.id
		FOR UPDATE OF r SKIP LOCKED
		LIMIT 1`
	return r.scanOne(query, gtin)
}

// CountUnfulfilledByOrder cuenta líneas del pedido cuya reserva no está cumplida.
func (r *ReservationRepo) CountUnfulfilledByOrder(orderID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(), `
		SELECT count(*)
		FROM order_lines l
		LEFT JOIN reservations r ON r.order_line_id = l.id
		WHERE l.order_id = $1 AND (r.id IS NULL OR r.inventory_id IS NULL)`,
		orderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unfulfilled: %w", err)
	}
	return count, nil
}

func (r *ReservationRepo) scanOne(query string, args ...any) (*entity.Reservation, error) {
	var res entity.Reservation
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&res.ID, &res.OrderLineID, &res.InventoryID, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}
