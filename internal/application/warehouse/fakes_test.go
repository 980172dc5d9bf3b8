package warehouse_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/events"
	"github.com/jhoicas/Almacen-api/internal/application/queue"
	"github.com/jhoicas/Almacen-api/internal/application/warehouse"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: implementan los puertos de repositorio con los mismos
// invariantes que los índices de la BD (reserva única por línea, unidad
// única por reserva cumplida).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu           sync.Mutex
	orders       map[string]*entity.Order
	lines        map[string]*entity.OrderLine
	reservations map[string]*entity.Reservation
	inventory    map[string]*entity.Inventory
	locations    map[string]*entity.Location
}

func newMemStore() *memStore {
	return &memStore{
		orders:       make(map[string]*entity.Order),
		lines:        make(map[string]*entity.OrderLine),
		reservations: make(map[string]*entity.Reservation),
		inventory:    make(map[string]*entity.Inventory),
		locations:    make(map[string]*entity.Location),
	}
}

// ---- OrderRepository ----

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(id string, withDeleted bool) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	if !withDeleted && o.DeletedAt != nil {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

// GetByIDForUpdate incluye eliminados, como el SELECT FOR UPDATE real.
func (r *memOrderRepo) GetByIDForUpdate(id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) UpdateStatus(order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[order.ID]; ok {
		o.Status = order.Status
		o.UpdatedAt = time.Now()
	}
	return nil
}

func (r *memOrderRepo) SoftDelete(order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[order.ID]; ok {
		o.Status = entity.OrderStatusDeleted
		o.DeletedAt = order.DeletedAt
	}
	return nil
}

func (r *memOrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.DeletedAt != nil {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ---- OrderLineRepository ----

type memLineRepo struct{ s *memStore }

func (r *memLineRepo) Create(line *entity.OrderLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *line
	r.s.lines[line.ID] = &cp
	return nil
}

func (r *memLineRepo) GetByID(id string) (*entity.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lines[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memLineRepo) ListByOrder(orderID string) ([]*entity.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderLine
	for _, l := range r.s.lines {
		if l.OrderID == orderID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memLineRepo) CountByOrder(orderID string) (int, error) {
	lines, _ := r.ListByOrder(orderID)
	return len(lines), nil
}

func (r *memLineRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.lines, id)
	return nil
}

// ---- ReservationRepository ----

type memReservationRepo struct{ s *memStore }

func (r *memReservationRepo) Create(res *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reservations {
		if existing.OrderLineID == res.OrderLineID {
			return nil // idempotente
		}
	}
	cp := *res
	r.s.reservations[res.ID] = &cp
	return nil
}

func (r *memReservationRepo) byLineID(lineID string) *entity.Reservation {
	for _, res := range r.s.reservations {
		if res.OrderLineID == lineID {
			return res
		}
	}
	return nil
}

func (r *memReservationRepo) GetByLineID(lineID string) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := r.byLineID(lineID)
	if res == nil {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r *memReservationRepo) GetByLineIDForUpdate(lineID string) (*entity.Reservation, error) {
	return r.GetByLineID(lineID)
}

func (r *memReservationRepo) GetByInventoryID(inventoryID string) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.InventoryID != nil && *res.InventoryID == inventoryID {
			cp := *res
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memReservationRepo) DeleteByLineID(lineID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := r.byLineID(lineID)
	if res == nil {
		return 0, nil
	}
	delete(r.s.reservations, res.ID)
	return 1, nil
}

// SetInventory replica las guardas de la BD: la reserva debe seguir vacía y
// la unidad no puede estar ya vinculada a otra reserva.
func (r *memReservationRepo) SetInventory(reservationID, inventoryID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[reservationID]
	if !ok || res.InventoryID != nil {
		return domain.ErrConflict
	}
	for _, other := range r.s.reservations {
		if other.InventoryID != nil && *other.InventoryID == inventoryID {
			return domain.ErrConflict
		}
	}
	inv := inventoryID
	res.InventoryID = &inv
	return nil
}

func (r *memReservationRepo) NextUnfulfilledByGtin(gtin string) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var candidate *entity.Reservation
	for _, res := range r.s.reservations {
		if res.InventoryID != nil {
			continue
		}
		line, ok := r.s.lines[res.OrderLineID]
		if !ok || line.Gtin != gtin {
			continue
		}
		if candidate == nil ||
			res.CreatedAt.Before(candidate.CreatedAt) ||
			(res.CreatedAt.Equal(candidate.CreatedAt) && res.ID < candidate.ID) {
			candidate = res
		}
	}
	if candidate == nil {
		return nil, nil
	}
	cp := *candidate
	return &cp, nil
}

func (r *memReservationRepo) CountUnfulfilledByOrder(orderID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, line := range r.s.lines {
		if line.OrderID != orderID {
			continue
		}
		res := r.byLineID(line.ID)
		if res == nil || res.InventoryID == nil {
			count++
		}
	}
	return count, nil
}

// ---- InventoryRepository ----

type memInventoryRepo struct{ s *memStore }

func (r *memInventoryRepo) Create(inv *entity.Inventory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *inv
	r.s.inventory[inv.ID] = &cp
	return nil
}

func (r *memInventoryRepo) GetByID(id string, withRemoved bool) (*entity.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventory[id]
	if !ok {
		return nil, nil
	}
	if !withRemoved && inv.RemovedAt != nil {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInventoryRepo) GetByIDForUpdate(id string) (*entity.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventory[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInventoryRepo) NextAvailableByGtin(gtin string) (*entity.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reserved := make(map[string]bool)
	for _, res := range r.s.reservations {
		if res.InventoryID != nil {
			reserved[*res.InventoryID] = true
		}
	}
	var candidate *entity.Inventory
	for _, inv := range r.s.inventory {
		if inv.Gtin != gtin || inv.RemovedAt != nil || reserved[inv.ID] {
			continue
		}
		if candidate == nil ||
			inv.CreatedAt.Before(candidate.CreatedAt) ||
			(inv.CreatedAt.Equal(candidate.CreatedAt) && inv.ID < candidate.ID) {
			candidate = inv
		}
	}
	if candidate == nil {
		return nil, nil
	}
	cp := *candidate
	return &cp, nil
}

func (r *memInventoryRepo) SoftRemove(id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv, ok := r.s.inventory[id]; ok {
		removed := at
		inv.RemovedAt = &removed
	}
	return nil
}

func (r *memInventoryRepo) ListByLocation(locationID string, withRemoved bool, limit, offset int) ([]*entity.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Inventory
	for _, inv := range r.s.inventory {
		if inv.LocationID != locationID {
			continue
		}
		if !withRemoved && inv.RemovedAt != nil {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- LocationRepository ----

type memLocationRepo struct{ s *memStore }

func (r *memLocationRepo) Create(location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *location
	r.s.locations[location.ID] = &cp
	return nil
}

func (r *memLocationRepo) GetByID(id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	loc, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}

func (r *memLocationRepo) List(limit, offset int) ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Location
	for _, loc := range r.s.locations {
		cp := *loc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- TxRunner ----

// memTxRunner ejecuta el callback directamente sobre el store compartido;
// la atomicidad real la cubren los tests de integración con PostgreSQL.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	lineRepo repository.OrderLineRepository,
	resRepo repository.ReservationRepository,
	invRepo repository.InventoryRepository,
) error) error {
	return fn(&memOrderRepo{t.s}, &memLineRepo{t.s}, &memReservationRepo{t.s}, &memInventoryRepo{t.s})
}

// ---- Publisher y Enqueuer de grabación ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) byName(name string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) byType(t queue.JobType) []queue.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []queue.Job
	for _, j := range q.jobs {
		if j.Type == t {
			out = append(out, j)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test: casos de uso cableados sobre los fakes
// ──────────────────────────────────────────────────────────────────────────────

// gtins con dígito de control válido, usados en todos los tests del paquete
const (
	gtinA = "1300000000000"
	gtinB = "14000000000003"
)

type testEnv struct {
	store     *memStore
	orders    *warehouse.OrderUseCase
	lines     *warehouse.LineUseCase
	inventory *warehouse.InventoryUseCase
	pairing   *warehouse.PairingUseCase
	pub       *recordingPublisher
	jobs      *recordingQueue
}

func newTestEnv() *testEnv {
	store := newMemStore()
	tx := &memTxRunner{store}
	orderRepo := &memOrderRepo{store}
	lineRepo := &memLineRepo{store}
	resRepo := &memReservationRepo{store}
	invRepo := &memInventoryRepo{store}
	locationRepo := &memLocationRepo{store}
	pub := &recordingPublisher{}
	jobs := &recordingQueue{}

	orders := warehouse.NewOrderUseCase(tx, orderRepo, lineRepo, resRepo, pub, jobs)
	return &testEnv{
		store:     store,
		orders:    orders,
		lines:     warehouse.NewLineUseCase(tx, lineRepo, resRepo, invRepo, locationRepo, pub, jobs),
		inventory: warehouse.NewInventoryUseCase(invRepo, resRepo, locationRepo, pub, jobs),
		pairing:   warehouse.NewPairingUseCase(tx, orderRepo, lineRepo, orders),
		pub:       pub,
		jobs:      jobs,
	}
}

// seedLocation registra una ubicación directamente en el store.
func (e *testEnv) seedLocation(id, name string) {
	now := time.Now()
	e.store.locations[id] = &entity.Location{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
}
