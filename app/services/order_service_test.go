package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/repositories/memory"
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/auth"
	"github.com/resor-app/resor/pkg/event"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Fire(_ context.Context, name string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
}

type orderFixture struct {
	stores *memory.Stores
	svc    *services.OrderService
	events *recorder
	user   *models.User
	other  *models.User
	foodA  models.Food
	foodB  models.Food
}

func newOrderFixture(t *testing.T, policy services.OrderPolicy) *orderFixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	user := &models.User{FirstName: "Ada", Email: "ada@example.com", Role: models.RoleUser}
	other := &models.User{FirstName: "Bo", Email: "bo@example.com", Role: models.RoleUser}
	require.NoError(t, st.Users.Create(ctx, user))
	require.NoError(t, st.Users.Create(ctx, other))

	foods, err := st.Foods.CreateMany(ctx, []models.Food{
		{Title: "A", Price: 10},
		{Title: "B", Price: 5},
	})
	require.NoError(t, err)

	rec := &recorder{}
	return &orderFixture{
		stores: st,
		svc:    services.NewOrderService(st.Users, st.Foods, st.Vouchers, st.Orders, rec, policy),
		events: rec,
		user:   user,
		other:  other,
		foodA:  foods[0],
		foodB:  foods[1],
	}
}

func (f *orderFixture) principal(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID.Hex(), Role: u.Role}
}

func (f *orderFixture) items() []requests.OrderItemInput {
	return []requests.OrderItemInput{
		{FoodID: f.foodA.ID.Hex(), Quantity: 2},
		{FoodID: f.foodB.ID.Hex(), Quantity: 1},
	}
}

func (f *orderFixture) voucher(t *testing.T, code string, discount float64) *models.Voucher {
	t.Helper()
	v := &models.Voucher{Code: code, Discount: discount}
	require.NoError(t, f.stores.Vouchers.Create(context.Background(), v))
	return v
}

var admin = auth.Principal{UserID: primitive.NewObjectID().Hex(), Role: auth.RoleAdmin}

func TestCreateOrderTotals(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	require.NoError(t, err)
	assert.Equal(t, 25.0, o.TotalPrice)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Nil(t, o.Voucher)
	assert.Equal(t, f.user.ID, o.UserID)
	assert.Contains(t, f.events.events, event.OrderCreated)
}

func TestCreateOrderWithVoucher(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	ctx := context.Background()
	v := f.voucher(t, "HALF5000", 50)

	o, err := f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{
		Items:   f.items(),
		Voucher: "half5000",
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, o.TotalPrice)
	require.NotNil(t, o.Voucher)
	assert.Equal(t, v.ID, *o.Voucher)

	stored, _ := f.stores.Vouchers.FindByID(ctx, v.ID)
	assert.True(t, stored.IsUsed)
	// The redemption rides on the order event; every fired event has a listener.
	assert.Equal(t, []string{event.OrderCreated}, f.events.events)

	_, err = f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{
		Items:   f.items(),
		Voucher: "HALF5000",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 1, f.stores.Orders.Len())
}

func TestCreateOrderUnknownItemIsLeftOutOfTotal(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	items := append(f.items(), requests.OrderItemInput{FoodID: primitive.NewObjectID().Hex(), Quantity: 3})

	o, err := f.svc.Create(context.Background(), f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{Items: items})
	require.NoError(t, err)
	assert.Equal(t, 25.0, o.TotalPrice)
	assert.Len(t, o.Items, 3)
}

func TestCreateOrderRejectUnknownItems(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{RejectUnknownItems: true})
	items := append(f.items(), requests.OrderItemInput{FoodID: primitive.NewObjectID().Hex(), Quantity: 3})

	_, err := f.svc.Create(context.Background(), f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{Items: items})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Errors, "items.2.foodId")
	assert.Zero(t, f.stores.Orders.Len())
}

func TestCreateOrderInvalidVoucherWritesNothing(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})

	_, err := f.svc.Create(context.Background(), f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{
		Items:   f.items(),
		Voucher: "NOPE1234",
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Zero(t, f.stores.Orders.Len())
}

func TestCreateOrderUnknownUser(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})

	_, err := f.svc.Create(context.Background(), admin, primitive.NewObjectID().Hex(), requests.CreateOrderInput{Items: f.items()})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.Create(context.Background(), admin, "not-an-id", requests.CreateOrderInput{Items: f.items()})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Zero(t, f.stores.Orders.Len())
}

func TestCreateOrderForAnotherUserIsForbidden(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})

	_, err := f.svc.Create(context.Background(), f.principal(f.user), f.other.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	o, err := f.svc.Create(context.Background(), admin, f.other.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, o.UserID)
}

func TestCreateOrderReleasesVoucherWhenInsertFails(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	v := f.voucher(t, "SAVE1000", 10)
	f.stores.Orders.FailCreate = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{
		Items:   f.items(),
		Voucher: "SAVE1000",
	})
	require.Error(t, err)

	stored, _ := f.stores.Vouchers.FindByID(context.Background(), v.ID)
	assert.False(t, stored.IsUsed)
}

func TestConcurrentOrdersRedeemVoucherOnce(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	f.voucher(t, "ONCE0001", 20)

	var ok, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{
				Items:   f.items(),
				Voucher: "ONCE0001",
			})
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case apperr.KindOf(err) == apperr.KindConflict:
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, 9, conflicts)
	assert.Equal(t, 1, f.stores.Orders.Len())
}

func TestFindOrders(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	ctx := context.Background()

	mine, err := f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.principal(f.other), f.other.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	require.NoError(t, err)

	all, err := f.svc.Find(ctx, admin, f.user.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.svc.Find(ctx, f.principal(f.user), f.user.ID.Hex())
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)
	require.NotNil(t, own[0].Items[0].Food)
	assert.Equal(t, "A", own[0].Items[0].Food.Title)

	_, err = f.svc.Find(ctx, f.principal(f.user), f.other.ID.Hex())
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestFindOneExpandsAndAuthorizes(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	ctx := context.Background()
	f.voucher(t, "TENOFF10", 10)

	o, err := f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{
		Items:   f.items(),
		Voucher: "TENOFF10",
	})
	require.NoError(t, err)

	d, err := f.svc.FindOne(ctx, f.principal(f.user), o.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, d.Voucher)
	assert.Equal(t, "TENOFF10", d.Voucher.Code)
	assert.Equal(t, 22.5, d.TotalPrice)

	_, err = f.svc.FindOne(ctx, f.principal(f.other), o.ID.Hex())
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	_, err = f.svc.FindOne(ctx, admin, primitive.NewObjectID().Hex())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateStatusDefaultPolicy(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	ctx := context.Background()
	o, err := f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), models.StatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, updated.Status)

	again, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), models.StatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, again.Status)

	back, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, back.Status)

	_, err = f.svc.UpdateStatus(ctx, primitive.NewObjectID().Hex(), models.StatusFulfilled)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, o.ID.Hex(), "shipped")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Contains(t, f.events.events, event.OrderStatusChanged)
}

func TestUpdateStatusStrictPolicy(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{StrictTransitions: true})
	ctx := context.Background()
	o, err := f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, o.ID.Hex(), models.StatusFulfilled)
	require.NoError(t, err)

	same, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), models.StatusFulfilled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFulfilled, same.Status)

	_, err = f.svc.UpdateStatus(ctx, o.ID.Hex(), models.StatusCanceled)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCanTransition(t *testing.T) {
	strict := services.OrderPolicy{StrictTransitions: true}
	assert.True(t, strict.CanTransition(models.StatusPending, models.StatusFulfilled))
	assert.True(t, strict.CanTransition(models.StatusPending, models.StatusCanceled))
	assert.True(t, strict.CanTransition(models.StatusCanceled, models.StatusCanceled))
	assert.False(t, strict.CanTransition(models.StatusFulfilled, models.StatusPending))
	assert.False(t, strict.CanTransition(models.StatusCanceled, models.StatusFulfilled))

	assert.True(t, services.OrderPolicy{}.CanTransition(models.StatusFulfilled, models.StatusPending))
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t, services.OrderPolicy{})
	ctx := context.Background()
	o, err := f.svc.Create(ctx, f.principal(f.user), f.user.ID.Hex(), requests.CreateOrderInput{Items: f.items()})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, o.ID.Hex()))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.svc.Delete(ctx, o.ID.Hex())))
	assert.Contains(t, f.events.events, event.OrderDeleted)
}
