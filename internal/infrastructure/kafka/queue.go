// Package kafka implementa la cola de trabajos de emparejamiento sobre un
// tópico de Kafka, para despliegues con varios nodos del API. Se activa con
// QUEUE_DRIVER=kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Almacen-api/internal/application/queue"
)

var _ queue.Enqueuer = (*Queue)(nil)

// Handler procesa un trabajo consumido del tópico.
type Handler func(ctx context.Context, job queue.Job) error

// Config opciones de conexión y consumo.
type Config struct {
	Brokers     []string
	Topic       string
	GroupID     string
	MaxAttempts int
	RetryDelay  time.Duration
}

// Queue productor y consumidor de trabajos de emparejamiento.
type Queue struct {
	cfg       Config
	writer    *kafkago.Writer
	handler   Handler
	retryable func(error) bool
}

// New construye el productor. El consumo arranca con Start.
func New(cfg Config, handler Handler, retryable func(error) bool) *Queue {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Queue{cfg: cfg, writer: writer, handler: handler, retryable: retryable}
}

// Enqueue publica el trabajo como JSON, clave por entidad para preservar el
// orden por unidad/línea dentro de una partición.
func (q *Queue) Enqueue(ctx context.Context, job queue.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("serializando trabajo: %w", err)
	}
	key := job.InventoryID
	if job.Type == queue.JobPairOrderLine {
		key = job.OrderLineID
	}
	err = q.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publicando trabajo en %s: %w", q.cfg.Topic, err)
	}
	return nil
}

// Start consume el tópico hasta que ctx se cancele. El commit es manual y
// posterior al procesamiento: ante un error transitorio el trabajo se
// republica con el contador de intentos incrementado antes de confirmar.
func (q *Queue) Start(ctx context.Context) {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        q.cfg.Brokers,
		Topic:          q.cfg.Topic,
		GroupID:        q.cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       1e6,
		CommitInterval: 0,
	})
	go func() {
		defer reader.Close()
		for {
			msg, err := reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("error leyendo del tópico de emparejamiento")
				continue
			}
			q.process(ctx, msg)
			if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("error confirmando offset")
			}
		}
	}()
}

func (q *Queue) process(ctx context.Context, msg kafkago.Message) {
	var job queue.Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		log.Error().Err(err).Msg("trabajo de emparejamiento ilegible, descartado")
		return
	}
	job.Attempt++
	err := q.handler(ctx, job)
	if err == nil {
		return
	}
	if q.retryable != nil && q.retryable(err) && job.Attempt < q.cfg.MaxAttempts {
		log.Warn().Err(err).Str("type", string(job.Type)).Int("attempt", job.Attempt).
			Msg("contención en emparejamiento, republicando")
		time.Sleep(q.cfg.RetryDelay)
		if err := q.Enqueue(ctx, job); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("error republicando trabajo")
		}
		return
	}
	log.Error().Err(err).Str("type", string(job.Type)).Int("attempt", job.Attempt).
		Msg("trabajo de emparejamiento descartado")
}

// Close cierra el productor.
func (q *Queue) Close() error {
	return q.writer.Close()
}
