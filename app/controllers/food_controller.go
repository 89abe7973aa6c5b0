package controllers

import (
	"net/http"

	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/ctx"
)

// maxImageBytes caps image uploads.
const maxImageBytes = 5 << 20

type FoodController struct {
	service *services.FoodService
}

func NewFoodController(service *services.FoodService) *FoodController {
	return &FoodController{service: service}
}

func (c *FoodController) Show(x *ctx.Context) {
	food, err := c.service.Show(x.Context(), x.Param("categoryId"), x.Param("foodId"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(food)
}

// Store adds a JSON array of foods to the category.
func (c *FoodController) Store(x *ctx.Context) {
	var in requests.AddFoodsInput
	if !x.BindJSON(&in) {
		return
	}
	foods, err := c.service.AddFoods(x.Context(), x.Param("categoryId"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(foods)
}

func (c *FoodController) Destroy(x *ctx.Context) {
	if err := c.service.Remove(x.Context(), x.Param("categoryId"), x.Param("foodId")); err != nil {
		x.Fail(err)
		return
	}
	x.NoContent()
}

// UploadImage takes the raw image as the request body; Content-Type names
// the format.
func (c *FoodController) UploadImage(x *ctx.Context) {
	if x.R.ContentLength > maxImageBytes {
		x.Fail(apperr.Validation("Bad request", map[string]string{"image": "The image may not be greater than 5 MB."}))
		return
	}
	body := http.MaxBytesReader(x.W, x.R.Body, maxImageBytes)
	food, err := c.service.UploadImage(x.Context(), x.Param("categoryId"), x.Param("foodId"), x.Header("Content-Type"), body)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(food)
}
