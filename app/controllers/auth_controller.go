package controllers

import (
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register handles POST /register.
func (c *AuthController) Register(x *ctx.Context) {
	var in requests.RegisterInput
	if !x.BindJSON(&in) {
		return
	}
	res, err := c.service.Register(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(res)
}

// Login handles POST /login.
func (c *AuthController) Login(x *ctx.Context) {
	var in requests.LoginInput
	if !x.BindJSON(&in) {
		return
	}
	res, err := c.service.Login(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(res)
}
