// Package event is an in-process publish/subscribe bus. Services fire
// domain events; listeners (the websocket feed, the Kafka publisher) react.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/resor-app/resor/pkg/logger"
)

// Names of the events fired by the order service.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderDeleted       = "order.deleted"
)

type Handler func(ctx context.Context, payload any)

// Bus dispatches payloads to the handlers registered for an event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers h for name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

// Fire calls every handler for name in registration order. A panicking
// handler is logged and does not stop the others.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	for _, h := range b.snapshot(name) {
		call(ctx, name, h, payload)
	}
}

// Flush removes all handlers.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", fmt.Sprint(rec))
		}
	}()
	h(ctx, payload)
}

// Default is the process-wide bus.
var Default = New()

func Listen(name string, h Handler) { Default.Listen(name, h) }

func Fire(ctx context.Context, name string, payload any) { Default.Fire(ctx, name, payload) }
