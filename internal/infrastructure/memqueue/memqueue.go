// Package memqueue implementa la cola de trabajos de emparejamiento en
// memoria, con un pool de workers. Es el driver por defecto: el motor
// funciona sin broker externo y los reintentos por contención quedan en
// proceso.
package memqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Almacen-api/internal/application/queue"
)

var _ queue.Enqueuer = (*Queue)(nil)

// Handler procesa un trabajo. Un error transitorio (domain.ErrConflict)
// provoca reencolado; cualquier otro error descarta el trabajo.
type Handler func(ctx context.Context, job queue.Job) error

// Config opciones de la cola.
type Config struct {
	Workers     int           // tamaño del pool (mínimo 1)
	Buffer      int           // capacidad del canal
	MaxAttempts int           // entregas máximas por trabajo (mínimo 1)
	RetryDelay  time.Duration // espera antes de reencolar
}

// Queue cola en memoria con workers concurrentes.
type Queue struct {
	cfg       Config
	jobs      chan queue.Job
	handler   Handler
	retryable func(error) bool
	wg        sync.WaitGroup
}

// New construye la cola. retryable decide si un error de handler debe
// reintentarse (contención) o descartarse.
func New(cfg Config, handler Handler, retryable func(error) bool) *Queue {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Buffer < 1 {
		cfg.Buffer = 64
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 50 * time.Millisecond
	}
	return &Queue{
		cfg:       cfg,
		jobs:      make(chan queue.Job, cfg.Buffer),
		handler:   handler,
		retryable: retryable,
	}
}

// Enqueue encola un trabajo; falla si la cola está llena o el contexto
// cancelado (el llamador decide si lo registra o lo reintenta).
func (q *Queue) Enqueue(ctx context.Context, job queue.Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("cola de emparejamiento llena (capacidad %d)", q.cfg.Buffer)
	}
}

// Start arranca el pool de workers; devuelven al cancelar ctx.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Wait bloquea hasta que todos los workers terminen.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	wlog := log.With().Int("worker", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			job.Attempt++
			err := q.handler(ctx, job)
			if err == nil {
				continue
			}
			if q.retryable != nil && q.retryable(err) && job.Attempt < q.cfg.MaxAttempts {
				wlog.Warn().Err(err).Str("type", string(job.Type)).Int("attempt", job.Attempt).
					Msg("contención en emparejamiento, reencolando")
				q.requeue(ctx, job)
				continue
			}
			wlog.Error().Err(err).Str("type", string(job.Type)).Int("attempt", job.Attempt).
				Msg("trabajo de emparejamiento descartado")
		}
	}
}

// requeue reencola tras una espera corta, sin bloquear el worker si la cola
// está llena al expirar el contexto.
func (q *Queue) requeue(ctx context.Context, job queue.Job) {
	timer := time.NewTimer(q.cfg.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	select {
	case q.jobs <- job:
	case <-ctx.Done():
	}
}
