package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/cache"
	"github.com/resor-app/resor/pkg/database"
	"github.com/resor-app/resor/pkg/logger"
)

const categoriesKey = "catalog:categories"

func categoryKey(id string) string { return "catalog:category:" + id }

// CategoryService serves the menu. Reads go through the cache; every write
// drops the affected keys.
type CategoryService struct {
	categories CategoryStore
	foods      MenuItemStore
	cache      cache.Store
	ttl        time.Duration
}

func NewCategoryService(categories CategoryStore, foods MenuItemStore, c cache.Store, ttl time.Duration) *CategoryService {
	return &CategoryService{categories: categories, foods: foods, cache: c, ttl: ttl}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, s.cache, categoriesKey, s.ttl, func() ([]models.Category, error) {
		cats, err := s.categories.FindAll(ctx)
		if cats == nil {
			cats = []models.Category{}
		}
		return cats, err
	})
}

// Show returns a category with its foods expanded.
func (s *CategoryService) Show(ctx context.Context, rawID string) (*models.CategoryDetail, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return cache.Remember(ctx, s.cache, categoryKey(id.Hex()), s.ttl, func() (*models.CategoryDetail, error) {
		cat, err := s.categories.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, apperr.NotFound("Category not found")
		}
		foods, err := s.foods.FindByCategory(ctx, id)
		if err != nil {
			return nil, err
		}
		if foods == nil {
			foods = []models.Food{}
		}
		return &models.CategoryDetail{Category: *cat, Foods: foods}, nil
	})
}

// CreateMany inserts categories in bulk. A title clash fails the request.
func (s *CategoryService) CreateMany(ctx context.Context, in requests.CreateCategoriesInput) ([]models.Category, error) {
	cats := make([]models.Category, len(in))
	for i, c := range in {
		cats[i] = models.Category{Title: c.Title, ImageURL: c.ImageURL, Description: c.Description}
	}
	created, err := s.categories.CreateMany(ctx, cats)
	if err != nil {
		if database.IsDuplicate(err) {
			return nil, apperr.Conflict("Category already exists")
		}
		return nil, err
	}
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("categories created", "count", len(created))
	return created, nil
}

// Archive soft deletes a category; its foods stay reachable by id.
func (s *CategoryService) Archive(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	ok, err := s.categories.Archive(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Category not found")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	keys := []string{categoriesKey}
	for _, id := range ids {
		keys = append(keys, categoryKey(id.Hex()))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "error", err)
	}
}
