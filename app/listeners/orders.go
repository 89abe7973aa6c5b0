// Package listeners wires domain events to their side effects: the live
// websocket feed and the Kafka topic.
package listeners

import (
	"context"
	"errors"

	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/broker"
	"github.com/resor-app/resor/pkg/event"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/workerpool"
)

// Broadcaster pushes a JSON message to connected clients.
type Broadcaster interface {
	BroadcastJSON(v any) error
}

var orderEvents = []string{event.OrderCreated, event.OrderStatusChanged, event.OrderDeleted}

// Register subscribes the order listeners on bus. hub and pub may be nil.
// Publishing runs on pool so a slow broker never holds up a request.
func Register(bus *event.Bus, hub Broadcaster, pool *workerpool.Pool, pub broker.Publisher) {
	for _, name := range orderEvents {
		if hub != nil {
			bus.Listen(name, broadcast(hub))
		}
		if pub != nil && pool != nil {
			bus.Listen(name, publish(pool, pub))
		}
	}
}

func broadcast(hub Broadcaster) event.Handler {
	return func(ctx context.Context, payload any) {
		if err := hub.BroadcastJSON(payload); err != nil {
			logger.WithCtx(ctx).Warn("order feed broadcast failed", "error", err)
		}
	}
}

func publish(pool *workerpool.Pool, pub broker.Publisher) event.Handler {
	return func(ctx context.Context, payload any) {
		e, ok := payload.(services.OrderEvent)
		if !ok {
			return
		}
		log := logger.WithCtx(ctx)
		err := pool.Submit(func() {
			if err := pub.Publish(context.Background(), e.Order.ID.Hex(), e); err != nil {
				log.Error("order event publish failed", "event", e.Event, "order_id", e.Order.ID.Hex(), "error", err)
			}
		})
		if errors.Is(err, workerpool.ErrPoolFull) || errors.Is(err, workerpool.ErrPoolClosed) {
			log.Warn("order event dropped", "event", e.Event, "error", err)
		}
	}
}
