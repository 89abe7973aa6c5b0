package controllers

import (
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/ctx"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Index lists orders visible to the caller.
func (c *OrderController) Index(x *ctx.Context) {
	orders, err := c.service.Find(x.Context(), x.Principal(), x.Param("userId"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(orders)
}

func (c *OrderController) Store(x *ctx.Context) {
	var in requests.CreateOrderInput
	if !x.BindJSON(&in) {
		return
	}
	order, err := c.service.Create(x.Context(), x.Principal(), x.Param("userId"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(order)
}

func (c *OrderController) Show(x *ctx.Context) {
	order, err := c.service.FindOne(x.Context(), x.Principal(), x.Param("orderId"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(order)
}

func (c *OrderController) Update(x *ctx.Context) {
	var in requests.UpdateOrderInput
	if !x.BindJSON(&in) {
		return
	}
	order, err := c.service.UpdateStatus(x.Context(), x.Param("orderId"), in.Status)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(order)
}

func (c *OrderController) Destroy(x *ctx.Context) {
	if err := c.service.Delete(x.Context(), x.Param("orderId")); err != nil {
		x.Fail(err)
		return
	}
	x.NoContent()
}
