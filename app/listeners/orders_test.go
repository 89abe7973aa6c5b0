package listeners

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/event"
	"github.com/resor-app/resor/pkg/workerpool"
)

type fakeHub struct {
	mu   sync.Mutex
	sent []any
}

func (h *fakeHub) BroadcastJSON(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, v)
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (p *mockPublisher) Publish(ctx context.Context, key string, payload any) error {
	return p.Called(ctx, key, payload).Error(0)
}

func (p *mockPublisher) Close() error { return p.Called().Error(0) }

func TestOrderEventsReachHubAndBroker(t *testing.T) {
	bus := event.New()
	hub := &fakeHub{}
	pool := workerpool.New(1)

	order := models.Order{ID: primitive.NewObjectID(), Status: models.StatusPending}
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, order.ID.Hex(), mock.AnythingOfType("services.OrderEvent")).Return(nil).Once()

	Register(bus, hub, pool, pub)
	bus.Fire(context.Background(), event.OrderCreated, services.OrderEvent{Event: event.OrderCreated, Order: order})

	// Shutdown drains the queue, so the publish has run when it returns.
	pool.Shutdown()
	pub.AssertExpectations(t)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	require.Len(t, hub.sent, 1)
	assert.Equal(t, order.ID, hub.sent[0].(services.OrderEvent).Order.ID)
}

func TestRegisterWithoutBroker(t *testing.T) {
	bus := event.New()
	hub := &fakeHub{}
	Register(bus, hub, nil, nil)

	bus.Fire(context.Background(), event.OrderDeleted, services.OrderEvent{Event: event.OrderDeleted})
	bus.Fire(context.Background(), "user.registered", models.User{})

	assert.Len(t, hub.sent, 1)
}
