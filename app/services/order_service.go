package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/auth"
	"github.com/resor-app/resor/pkg/event"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/metrics"
)

// OrderPolicy holds the switchable order rules.
type OrderPolicy struct {
	// StrictTransitions only allows pending -> fulfilled|canceled.
	StrictTransitions bool
	// RejectUnknownItems fails creation when a line names a missing food
	// instead of leaving it out of the total.
	RejectUnknownItems bool
}

func PolicyFromConfig() OrderPolicy {
	return OrderPolicy{
		StrictTransitions:  config.OrderStrictTransitions(),
		RejectUnknownItems: config.OrderRejectUnknownItems(),
	}
}

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending: {models.StatusFulfilled, models.StatusCanceled},
}

// CanTransition reports whether an order may move from one status to
// another. Setting the current status again is always allowed.
func (p OrderPolicy) CanTransition(from, to models.OrderStatus) bool {
	if !p.StrictTransitions || from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Emitter receives domain events. *event.Bus implements it.
type Emitter interface {
	Fire(ctx context.Context, name string, payload any)
}

type noopEmitter struct{}

func (noopEmitter) Fire(context.Context, string, any) {}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	Event          string             `json:"event"`
	Order          models.Order       `json:"order"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
}

type OrderService struct {
	users    UserStore
	foods    MenuItemStore
	vouchers VoucherStore
	orders   OrderStore
	events   Emitter
	policy   OrderPolicy
}

func NewOrderService(users UserStore, foods MenuItemStore, vouchers VoucherStore, orders OrderStore, events Emitter, policy OrderPolicy) *OrderService {
	if events == nil {
		events = noopEmitter{}
	}
	return &OrderService{
		users:    users,
		foods:    foods,
		vouchers: vouchers,
		orders:   orders,
		events:   events,
		policy:   policy,
	}
}

// authorizeUser lets admins act for anyone and users act for themselves.
func authorizeUser(caller auth.Principal, userID primitive.ObjectID) error {
	if caller.IsAdmin() || caller.UserID == userID.Hex() {
		return nil
	}
	return apperr.Authorization("Forbidden")
}

// Create prices and persists an order for userID. Nothing is written
// unless the user exists and any voucher code redeems.
func (s *OrderService) Create(ctx context.Context, caller auth.Principal, rawUserID string, in requests.CreateOrderInput) (*models.Order, error) {
	userID, err := parseID(rawUserID)
	if err != nil {
		return nil, err
	}
	if err := authorizeUser(caller, userID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	items, subtotal, err := s.price(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:     user.ID,
		Items:      items,
		TotalPrice: subtotal,
		Status:     models.StatusPending,
		TableNo:    in.TableNo,
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		order.Note = &note
	}

	var voucher *models.Voucher
	if in.Voucher != "" {
		voucher, err = s.redeem(ctx, in.Voucher)
		if err != nil {
			return nil, err
		}
		order.Voucher = &voucher.ID
		order.TotalPrice = voucher.Apply(subtotal)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if voucher != nil {
			s.release(ctx, voucher)
		}
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	metrics.OrderAmount.Observe(order.TotalPrice)
	logger.WithCtx(ctx).Info("order created",
		"order_id", order.ID.Hex(),
		"user_id", user.ID.Hex(),
		"total", order.TotalPrice,
	)
	s.events.Fire(ctx, event.OrderCreated, OrderEvent{Event: event.OrderCreated, Order: *order})
	return order, nil
}

// price resolves every line against the menu in one batch and sums
// price x quantity over the lines that resolved. Every requested line is
// kept on the order.
func (s *OrderService) price(ctx context.Context, in []requests.OrderItemInput) ([]models.LineItem, float64, error) {
	items := make([]models.LineItem, len(in))
	ids := make([]primitive.ObjectID, 0, len(in))
	for i, it := range in {
		id, err := primitive.ObjectIDFromHex(it.FoodID)
		if err != nil {
			return nil, 0, apperr.Validation("Bad request", map[string]string{
				fmt.Sprintf("items.%d.foodId", i): "The foodId must be a valid id.",
			})
		}
		items[i] = models.LineItem{Food: id, Quantity: it.Quantity}
		ids = append(ids, id)
	}

	foods, err := s.foods.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[primitive.ObjectID]models.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	var subtotal float64
	unknown := map[string]string{}
	for i, it := range items {
		f, ok := byID[it.Food]
		if !ok {
			unknown[fmt.Sprintf("items.%d.foodId", i)] = "Menu item " + it.Food.Hex() + " does not exist."
			continue
		}
		subtotal += f.Price * float64(it.Quantity)
	}

	if len(unknown) > 0 {
		if s.policy.RejectUnknownItems {
			return nil, 0, apperr.Validation("Unknown menu items", unknown)
		}
		logger.WithCtx(ctx).Warn("order lines left out of total", "count", len(unknown))
	}
	return items, subtotal, nil
}

// redeem marks the voucher used in a single conditional update so two
// orders can never share it.
func (s *OrderService) redeem(ctx context.Context, rawCode string) (*models.Voucher, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	v, err := s.vouchers.Redeem(ctx, code)
	if err != nil {
		return nil, err
	}
	if v != nil {
		metrics.VoucherRedemptions.WithLabelValues("redeemed").Inc()
		return v, nil
	}

	existing, err := s.vouchers.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.VoucherRedemptions.WithLabelValues("used").Inc()
		return nil, apperr.Conflict("Voucher already used")
	}
	metrics.VoucherRedemptions.WithLabelValues("invalid").Inc()
	return nil, apperr.NotFound("Invalid Voucher")
}

func (s *OrderService) release(ctx context.Context, v *models.Voucher) {
	if err := s.vouchers.Release(ctx, v.ID); err != nil {
		logger.WithCtx(ctx).Error("voucher release failed", "voucher_id", v.ID.Hex(), "error", err)
		return
	}
	metrics.VoucherRedemptions.WithLabelValues("released").Inc()
}

// FindOne returns an order with its foods and voucher expanded. Users may
// only read their own orders.
func (s *OrderService) FindOne(ctx context.Context, caller auth.Principal, rawOrderID string) (*models.OrderDetail, error) {
	id, err := parseID(rawOrderID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found")
	}
	if err := authorizeUser(caller, order.UserID); err != nil {
		return nil, err
	}

	details, err := s.expand(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// Find lists orders. Admins see every order; anyone else sees only the
// orders owned by userID, which must be themselves.
func (s *OrderService) Find(ctx context.Context, caller auth.Principal, rawUserID string) ([]models.OrderDetail, error) {
	userID, err := parseID(rawUserID)
	if err != nil {
		return nil, err
	}
	if err := authorizeUser(caller, userID); err != nil {
		return nil, err
	}

	var filter OrderFilter
	if !caller.IsAdmin() {
		filter.UserID = &userID
	}
	orders, err := s.orders.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, orders)
}

func (s *OrderService) expand(ctx context.Context, orders []models.Order) ([]models.OrderDetail, error) {
	seen := map[primitive.ObjectID]bool{}
	var foodIDs []primitive.ObjectID
	for _, o := range orders {
		for _, id := range o.FoodIDs() {
			if !seen[id] {
				seen[id] = true
				foodIDs = append(foodIDs, id)
			}
		}
	}

	foods := map[primitive.ObjectID]models.Food{}
	if len(foodIDs) > 0 {
		found, err := s.foods.FindByIDs(ctx, foodIDs)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			foods[f.ID] = f
		}
	}

	vouchers := map[primitive.ObjectID]*models.Voucher{}
	out := make([]models.OrderDetail, len(orders))
	for i, o := range orders {
		var v *models.Voucher
		if o.Voucher != nil {
			cached, ok := vouchers[*o.Voucher]
			if !ok {
				found, err := s.vouchers.FindByID(ctx, *o.Voucher)
				if err != nil {
					return nil, err
				}
				vouchers[*o.Voucher] = found
				cached = found
			}
			v = cached
		}
		out[i] = o.Expand(foods, v)
	}
	return out, nil
}

// UpdateStatus sets an order's status, subject to the transition policy.
func (s *OrderService) UpdateStatus(ctx context.Context, rawOrderID string, status models.OrderStatus) (*models.Order, error) {
	id, err := parseID(rawOrderID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.Validation("Bad request", map[string]string{"status": "The selected status is invalid."})
	}

	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("Order not found")
	}
	if !s.policy.CanTransition(current.Status, status) {
		return nil, apperr.Conflict("InvalidTransition")
	}

	var from models.OrderStatus
	if s.policy.StrictTransitions {
		from = current.Status
	}
	updated, err := s.orders.UpdateStatus(ctx, id, from, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		if s.policy.StrictTransitions {
			return nil, apperr.Conflict("InvalidTransition")
		}
		return nil, apperr.NotFound("Order not found")
	}

	logger.WithCtx(ctx).Info("order status updated",
		"order_id", id.Hex(),
		"from", current.Status,
		"to", status,
	)
	s.events.Fire(ctx, event.OrderStatusChanged, OrderEvent{
		Event:          event.OrderStatusChanged,
		Order:          *updated,
		PreviousStatus: current.Status,
	})
	return updated, nil
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, rawOrderID string) error {
	id, err := parseID(rawOrderID)
	if err != nil {
		return err
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return apperr.NotFound("Order not found")
	}
	deleted, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Order not found")
	}
	logger.WithCtx(ctx).Info("order deleted", "order_id", id.Hex())
	s.events.Fire(ctx, event.OrderDeleted, OrderEvent{Event: event.OrderDeleted, Order: *order})
	return nil
}
