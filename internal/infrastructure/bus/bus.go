// Package bus implementa el publicador de eventos de dominio en proceso.
// Los suscriptores se registran explícitamente en el arranque; no hay
// dispatch implícito ni reflexión.
package bus

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Almacen-api/internal/application/events"
)

var _ events.Publisher = (*Bus)(nil)

// Handler procesa un evento de dominio.
type Handler func(ctx context.Context, event events.Event)

// Bus publicador en proceso con registro de suscriptores por nombre de evento.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New construye un bus vacío.
func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registra un handler para un nombre de evento.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish entrega el evento a todos los suscriptores, en orden de registro y
// de forma síncrona. Los publicadores llaman después del commit, así que los
// handlers solo observan estado confirmado.
func (b *Bus) Publish(ctx context.Context, event events.Event) {
	b.mu.RLock()
	hs := b.handlers[event.Name()]
	b.mu.RUnlock()

	log.Debug().Str("event", event.Name()).Int("handlers", len(hs)).Msg("evento de dominio publicado")
	for _, h := range hs {
		h(ctx, event)
	}
}
