package controllers

import (
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/ctx"
)

type CategoryController struct {
	service *services.CategoryService
}

func NewCategoryController(service *services.CategoryService) *CategoryController {
	return &CategoryController{service: service}
}

func (c *CategoryController) Index(x *ctx.Context) {
	cats, err := c.service.List(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(cats)
}

func (c *CategoryController) Show(x *ctx.Context) {
	cat, err := c.service.Show(x.Context(), x.Param("categoryId"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(cat)
}

// Store bulk creates categories from a JSON array.
func (c *CategoryController) Store(x *ctx.Context) {
	var in requests.CreateCategoriesInput
	if !x.BindJSON(&in) {
		return
	}
	cats, err := c.service.CreateMany(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(cats)
}

func (c *CategoryController) Destroy(x *ctx.Context) {
	if err := c.service.Archive(x.Context(), x.Param("categoryId")); err != nil {
		x.Fail(err)
		return
	}
	x.NoContent()
}
