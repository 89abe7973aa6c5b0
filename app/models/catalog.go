package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups menu items. ArchivedAt marks a soft delete.
type Category struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"        json:"id"`
	Title       string               `bson:"title"                json:"title"`
	ImageURL    string               `bson:"imageUrl,omitempty"   json:"imageUrl,omitempty"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Foods       []primitive.ObjectID `bson:"foods"                json:"foods"`
	ArchivedAt  *time.Time           `bson:"archivedAt,omitempty" json:"archivedAt,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"            json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"            json:"updatedAt"`
}

// CategoryDetail is a category with its foods expanded.
type CategoryDetail struct {
	Category
	Foods []Food `json:"foods"`
}

// Food is a menu item. It belongs to exactly one category.
type Food struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"         json:"id"`
	Title       string             `bson:"title"                 json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	About       string             `bson:"about,omitempty"       json:"about,omitempty"`
	Ingredients []string           `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Price       float64            `bson:"price"                 json:"price"`
	Calories    float64            `bson:"calories,omitempty"    json:"calories,omitempty"`
	WaitTime    float64            `bson:"waitTime,omitempty"    json:"waitTime,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty"    json:"imageUrl,omitempty"`
	CategoryID  primitive.ObjectID `bson:"categoryId"            json:"categoryId"`
	ArchivedAt  *time.Time         `bson:"archivedAt,omitempty"  json:"archivedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"             json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"             json:"updatedAt"`
}
