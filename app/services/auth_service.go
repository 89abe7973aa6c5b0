package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/auth"
	"github.com/resor-app/resor/pkg/database"
	"github.com/resor-app/resor/pkg/logger"
)

// AuthResult is the profile returned by register and login.
type AuthResult struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Email     string             `json:"email"`
	Role      string             `json:"role"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Token     string             `json:"token"`
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates a regular user. Admins are only created by the seeder.
func (s *AuthService) Register(ctx context.Context, in requests.RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Authentication("User already exists. Please Login")
	}

	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperr.Validation("Bad request", map[string]string{
			"password": fmt.Sprintf("The password must not be greater than %d bytes.", auth.MaxPasswordBytes),
		})
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Password:  hash,
		Role:      models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if database.IsDuplicate(err) {
			return nil, apperr.Authentication("User already exists. Please Login")
		}
		return nil, err
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID.Hex())
	return s.issue(user)
}

// Login checks the credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, in requests.LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.Password, in.Password) {
		return nil, apperr.Authentication("Invalid credentials")
	}
	return s.issue(user)
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Token:     token,
	}, nil
}
