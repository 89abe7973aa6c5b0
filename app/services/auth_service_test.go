package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/repositories/memory"
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := services.NewAuthService(st.Users)

	res, err := svc.Register(ctx, requests.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Password:  "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Email)
	assert.Equal(t, models.RoleUser, res.Role)
	assert.NotEmpty(t, res.Token)

	claims, err := auth.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID.Hex(), claims.UserID())
	assert.Equal(t, models.RoleUser, claims.Role)

	stored, _ := st.Users.FindByEmail(ctx, "ada@example.com")
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret", stored.Password)

	_, err = svc.Register(ctx, requests.RegisterInput{FirstName: "A", LastName: "B", Email: "ada@example.com", Password: "x"})
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	login, err := svc.Login(ctx, requests.LoginInput{Email: "ADA@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, res.ID, login.ID)

	_, err = svc.Login(ctx, requests.LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	_, err = svc.Login(ctx, requests.LoginInput{Email: "nobody@example.com", Password: "secret"})
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestRegisterPasswordLength(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := services.NewAuthService(st.Users)

	long := requests.RegisterInput{FirstName: "Bo", LastName: "Li", Email: "bo@example.com", Password: strings.Repeat("p", 100)}
	errs := long.Validate()
	assert.Contains(t, errs, "password")

	_, err := svc.Register(ctx, long)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	stored, _ := st.Users.FindByEmail(ctx, "bo@example.com")
	assert.Nil(t, stored)

	assert.Contains(t, requests.LoginInput{Email: "bo@example.com", Password: strings.Repeat("é", 40)}.Validate(), "password")

	edge := long
	edge.Password = strings.Repeat("p", auth.MaxPasswordBytes)
	assert.Empty(t, edge.Validate())
	_, err = svc.Register(ctx, edge)
	require.NoError(t, err)

	_, err = svc.Login(ctx, requests.LoginInput{Email: "bo@example.com", Password: edge.Password})
	require.NoError(t, err)
}
