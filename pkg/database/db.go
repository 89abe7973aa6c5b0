// Package database owns the MongoDB client and the collection indexes the
// repositories rely on.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	Users      = "users"
	Categories = "categories"
	Foods      = "foods"
	Vouchers   = "vouchers"
	Orders     = "orders"
)

// ErrDuplicate is returned by stores when a unique index rejects a write.
var ErrDuplicate = errors.New("database: duplicate key")

// IsDuplicate reports whether err is a unique-index violation from either
// MongoDB or an in-memory store.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate) || mongo.IsDuplicateKeyError(err)
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return client, nil
}

// Disconnect closes client within a short deadline.
func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// Indexes lists the indexes per collection.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		Categories: {
			{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "archivedAt", Value: 1}}},
		},
		Foods: {
			{Keys: bson.D{{Key: "categoryId", Value: 1}}},
			{Keys: bson.D{{Key: "archivedAt", Value: 1}}},
		},
		Vouchers: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "isUsed", Value: 1}}},
		},
		Orders: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
}

// EnsureIndexes creates every index from Indexes. Existing indexes are left
// untouched by MongoDB.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range Indexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("database: indexes on %s: %w", name, err)
		}
	}
	return nil
}

// ParseID converts a hex string to an ObjectID.
func ParseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}
