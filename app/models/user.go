package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/pkg/auth"
)

const (
	RoleAdmin = auth.RoleAdmin
	RoleUser  = auth.RoleUser
)

// User is an account. Role is fixed at creation.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName"     json:"firstName"`
	LastName  string             `bson:"lastName"      json:"lastName"`
	Email     string             `bson:"email"         json:"email"`
	Password  string             `bson:"password"      json:"-"` // bcrypt hash
	Role      string             `bson:"role"          json:"role"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
