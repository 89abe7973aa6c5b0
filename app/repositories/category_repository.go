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

// active matches categories that have not been archived.
var active = bson.M{"archivedAt": bson.M{"$exists": false}}

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection(database.Categories)}
}

// CreateMany inserts in order; the first duplicate title stops the batch.
func (r *CategoryRepository) CreateMany(ctx context.Context, cats []models.Category) ([]models.Category, error) {
	defer observe(database.Categories, "insert")()
	t := now()
	docs := make([]any, len(cats))
	out := make([]models.Category, len(cats))
	for i, c := range cats {
		c.ID = primitive.NewObjectID()
		c.CreatedAt, c.UpdatedAt = t, t
		if c.Foods == nil {
			c.Foods = []primitive.ObjectID{}
		}
		out[i] = c
		docs[i] = c
	}
	if _, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, dup(err)
	}
	return out, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	defer observe(database.Categories, "find")()
	cur, err := r.col.Find(ctx, active, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	defer observe(database.Categories, "find")()
	var c models.Category
	filter := bson.M{"_id": id, "archivedAt": active["archivedAt"]}
	ok, err := findOne(r.col.FindOne(ctx, filter), &c)
	if !ok {
		return nil, err
	}
	return &c, nil
}

// Archive sets archivedAt. It reports false when the category does not
// exist or is already archived.
func (r *CategoryRepository) Archive(ctx context.Context, id primitive.ObjectID) (bool, error) {
	defer observe(database.Categories, "update")()
	t := now()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "archivedAt": active["archivedAt"]},
		bson.M{"$set": bson.M{"archivedAt": t, "updatedAt": t}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *CategoryRepository) AddFoods(ctx context.Context, id primitive.ObjectID, foodIDs []primitive.ObjectID) error {
	defer observe(database.Categories, "update")()
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"foods": bson.M{"$each": foodIDs}},
		"$set":  bson.M{"updatedAt": now()},
	})
	return err
}

func (r *CategoryRepository) RemoveFood(ctx context.Context, id, foodID primitive.ObjectID) error {
	defer observe(database.Categories, "update")()
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"foods": foodID},
		"$set":  bson.M{"updatedAt": now()},
	})
	return err
}
