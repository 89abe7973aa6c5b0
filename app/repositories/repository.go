// Package repositories implements the service stores on MongoDB.
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resor-app/resor/pkg/database"
	"github.com/resor-app/resor/pkg/metrics"
)

// Repositories bundles one repository per collection.
type Repositories struct {
	db         *mongo.Database
	Users      *UserRepository
	Categories *CategoryRepository
	Foods      *FoodRepository
	Vouchers   *VoucherRepository
	Orders     *OrderRepository
}

func New(db *mongo.Database) *Repositories {
	return &Repositories{
		db:         db,
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Foods:      NewFoodRepository(db),
		Vouchers:   NewVoucherRepository(db),
		Orders:     NewOrderRepository(db),
	}
}

// Ping checks the database answers.
func (r *Repositories) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

var afterUpdate = options.FindOneAndUpdate().SetReturnDocument(options.After)

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// findOne decodes the single result into dest. It reports false when there
// was no document.
func findOne(res interface{ Decode(any) error }, dest any) (bool, error) {
	if err := res.Decode(dest); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// dup maps the driver's duplicate key error to database.ErrDuplicate.
func dup(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return errors.Join(database.ErrDuplicate, err)
	}
	return err
}

func observe(collection, op string) func() {
	start := time.Now()
	return func() { metrics.ObserveStore(collection, op, start) }
}
