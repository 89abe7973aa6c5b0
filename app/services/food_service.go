package services

import (
	"context"
	"io"
	"path"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/cache"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/storage"
)

// Image content types accepted for menu items, mapped to file extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type FoodService struct {
	categories CategoryStore
	foods      MenuItemStore
	cache      cache.Store
	disk       storage.Disk
}

func NewFoodService(categories CategoryStore, foods MenuItemStore, c cache.Store, disk storage.Disk) *FoodService {
	return &FoodService{categories: categories, foods: foods, cache: c, disk: disk}
}

func (s *FoodService) category(ctx context.Context, rawID string) (*models.Category, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("Category not found")
	}
	return cat, nil
}

// Show returns one food. The food must belong to the category in the path.
func (s *FoodService) Show(ctx context.Context, rawCategoryID, rawFoodID string) (*models.Food, error) {
	catID, err := parseID(rawCategoryID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(rawFoodID)
	if err != nil {
		return nil, err
	}
	food, err := s.foods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if food == nil || food.CategoryID != catID {
		return nil, apperr.NotFound("Food not found")
	}
	return food, nil
}

// AddFoods inserts foods into a category and appends their ids to it.
func (s *FoodService) AddFoods(ctx context.Context, rawCategoryID string, in requests.AddFoodsInput) ([]models.Food, error) {
	cat, err := s.category(ctx, rawCategoryID)
	if err != nil {
		return nil, err
	}

	foods := make([]models.Food, len(in))
	for i, f := range in {
		foods[i] = models.Food{
			Title:       f.Title,
			Description: f.Description,
			About:       f.About,
			Ingredients: f.Ingredients,
			Price:       f.Price,
			Calories:    f.Calories,
			WaitTime:    f.WaitTime,
			ImageURL:    f.ImageURL,
			CategoryID:  cat.ID,
		}
	}
	created, err := s.foods.CreateMany(ctx, foods)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(created))
	for i, f := range created {
		ids[i] = f.ID
	}
	if err := s.categories.AddFoods(ctx, cat.ID, ids); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cat.ID)
	logger.WithCtx(ctx).Info("foods added", "category_id", cat.ID.Hex(), "count", len(created))
	return created, nil
}

// Remove deletes a food and pulls it from its category. A food that belongs
// to another category is reported as not found.
func (s *FoodService) Remove(ctx context.Context, rawCategoryID, rawFoodID string) error {
	cat, err := s.category(ctx, rawCategoryID)
	if err != nil {
		return err
	}
	id, err := parseID(rawFoodID)
	if err != nil {
		return err
	}
	food, err := s.foods.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if food == nil || food.CategoryID != cat.ID {
		return apperr.NotFound("Food not found")
	}
	deleted, err := s.foods.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Food not found")
	}
	if err := s.categories.RemoveFood(ctx, cat.ID, id); err != nil {
		return err
	}
	s.invalidate(ctx, cat.ID)
	return nil
}

// UploadImage stores the image on the configured disk and points the food
// at its public URL.
func (s *FoodService) UploadImage(ctx context.Context, rawCategoryID, rawFoodID, contentType string, body io.Reader) (*models.Food, error) {
	food, err := s.Show(ctx, rawCategoryID, rawFoodID)
	if err != nil {
		return nil, err
	}

	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	ext, ok := imageTypes[mediaType]
	if !ok {
		return nil, apperr.Validation("Bad request", map[string]string{
			"image": "The image must be a jpeg, png or webp file.",
		})
	}

	name := path.Join("foods", food.ID.Hex()+ext)
	if err := s.disk.Put(ctx, name, body, mediaType); err != nil {
		return nil, err
	}

	updated, err := s.foods.SetImage(ctx, food.ID, s.disk.URL(name))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Food not found")
	}
	s.invalidate(ctx, food.CategoryID)
	return updated, nil
}

func (s *FoodService) invalidate(ctx context.Context, categoryID primitive.ObjectID) {
	if err := s.cache.Del(ctx, categoriesKey, categoryKey(categoryID.Hex())); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "error", err)
	}
}
