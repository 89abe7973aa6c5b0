package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
)

// Single-document lookups return (nil, nil) when nothing matches. Create
// methods assign the id and timestamps and return database.ErrDuplicate (or
// the driver's duplicate key error) on unique index violations.

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// CategoryStore ignores archived categories on reads.
type CategoryStore interface {
	CreateMany(ctx context.Context, cats []models.Category) ([]models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Archive(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddFoods(ctx context.Context, id primitive.ObjectID, foodIDs []primitive.ObjectID) error
	RemoveFood(ctx context.Context, id, foodID primitive.ObjectID) error
}

// MenuItemStore holds foods. FindByIDs silently omits ids that do not exist.
type MenuItemStore interface {
	CreateMany(ctx context.Context, foods []models.Food) ([]models.Food, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Food, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Food, error)
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Food, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	SetImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Food, error)
}

type VoucherStore interface {
	Create(ctx context.Context, v *models.Voucher) error
	FindAll(ctx context.Context) ([]models.Voucher, error)
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error)
	// Redeem atomically flips an unused voucher to used and returns it.
	// It returns nil when no unused voucher has the code.
	Redeem(ctx context.Context, code string) (*models.Voucher, error)
	// Release marks a voucher unused again.
	Release(ctx context.Context, id primitive.ObjectID) error
}

// OrderFilter narrows Find. A nil UserID matches every order.
type OrderFilter struct {
	UserID *primitive.ObjectID
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Find(ctx context.Context, f OrderFilter) ([]models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	// UpdateStatus sets the status when the order exists and, if from is
	// non-empty, currently has status from. It returns the updated order or
	// nil when nothing matched.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
}

// Pinger is implemented by stores that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}
