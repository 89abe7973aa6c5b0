package controllers

import (
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/ctx"
)

type VoucherController struct {
	service *services.VoucherService
}

func NewVoucherController(service *services.VoucherService) *VoucherController {
	return &VoucherController{service: service}
}

func (c *VoucherController) Index(x *ctx.Context) {
	vs, err := c.service.List(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(vs)
}

func (c *VoucherController) Store(x *ctx.Context) {
	var in requests.CreateVoucherInput
	if !x.BindJSON(&in) {
		return
	}
	v, err := c.service.Create(x.Context(), in.Discount)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(v)
}
