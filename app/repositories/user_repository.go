package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/pkg/database"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(database.Users)}
}

// Create persists a new user. The unique email index rejects duplicates.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer observe(database.Users, "insert")()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	_, err := r.col.InsertOne(ctx, u)
	return dup(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer observe(database.Users, "find")()
	var u models.User
	ok, err := findOne(r.col.FindOne(ctx, bson.M{"_id": id}), &u)
	if !ok {
		return nil, err
	}
	return &u, nil
}

// FindByEmail looks up a user by their (lower-cased) email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observe(database.Users, "find")()
	var u models.User
	ok, err := findOne(r.col.FindOne(ctx, bson.M{"email": email}), &u)
	if !ok {
		return nil, err
	}
	return &u, nil
}
