package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/database"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(database.Orders)}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer observe(database.Orders, "insert")()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt
	_, err := r.col.InsertOne(ctx, o)
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	defer observe(database.Orders, "find")()
	var o models.Order
	ok, err := findOne(r.col.FindOne(ctx, bson.M{"_id": id}), &o)
	if !ok {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Find(ctx context.Context, f services.OrderFilter) ([]models.Order, error) {
	defer observe(database.Orders, "find")()
	filter := bson.M{}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	defer observe(database.Orders, "delete")()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// UpdateStatus guards on the current status when from is set, so a
// concurrent change makes the update miss instead of overwrite.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	defer observe(database.Orders, "update")()
	filter := bson.M{"_id": id}
	if from != "" {
		filter["status"] = from
	}
	var o models.Order
	res := r.col.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"status": to, "updatedAt": now()}},
		afterUpdate,
	)
	ok, err := findOne(res, &o)
	if !ok {
		return nil, err
	}
	return &o, nil
}
