package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/pkg/database"
)

type FoodRepository struct {
	col *mongo.Collection
}

func NewFoodRepository(db *mongo.Database) *FoodRepository {
	return &FoodRepository{col: db.Collection(database.Foods)}
}

func (r *FoodRepository) CreateMany(ctx context.Context, foods []models.Food) ([]models.Food, error) {
	defer observe(database.Foods, "insert")()
	t := now()
	docs := make([]any, len(foods))
	out := make([]models.Food, len(foods))
	for i, f := range foods {
		f.ID = primitive.NewObjectID()
		f.CreatedAt, f.UpdatedAt = t, t
		out[i] = f
		docs[i] = f
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return nil, dup(err)
	}
	return out, nil
}

func (r *FoodRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Food, error) {
	defer observe(database.Foods, "find")()
	var f models.Food
	ok, err := findOne(r.col.FindOne(ctx, bson.M{"_id": id}), &f)
	if !ok {
		return nil, err
	}
	return &f, nil
}

// FindByIDs resolves a batch of ids in one query. Missing ids are omitted.
func (r *FoodRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Food, error) {
	defer observe(database.Foods, "find")()
	out := []models.Food{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *FoodRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Food, error) {
	defer observe(database.Foods, "find")()
	cur, err := r.col.Find(ctx,
		bson.M{"categoryId": categoryID, "archivedAt": bson.M{"$exists": false}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	out := []models.Food{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *FoodRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	defer observe(database.Foods, "delete")()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *FoodRepository) SetImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Food, error) {
	defer observe(database.Foods, "update")()
	var f models.Food
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"imageUrl": url, "updatedAt": now()}},
		afterUpdate,
	)
	ok, err := findOne(res, &f)
	if !ok {
		return nil, err
	}
	return &f, nil
}
