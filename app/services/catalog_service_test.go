package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/repositories/memory"
	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/cache"
	"github.com/resor-app/resor/pkg/storage"
)

type catalogFixture struct {
	stores     *memory.Stores
	categories *services.CategoryService
	foods      *services.FoodService
	disk       *storage.Local
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	st := memory.New()
	c := cache.NewMemory()
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost:3000/storage")
	require.NoError(t, err)
	return &catalogFixture{
		stores:     st,
		categories: services.NewCategoryService(st.Categories, st.Foods, c, 0),
		foods:      services.NewFoodService(st.Categories, st.Foods, c, disk),
		disk:       disk,
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := f.categories.CreateMany(ctx, requests.CreateCategoriesInput{{Title: "Soups"}, {Title: "Mains"}})
	require.NoError(t, err)
	require.Len(t, created, 2)

	// Write must invalidate the cached empty list.
	list, err = f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.categories.CreateMany(ctx, requests.CreateCategoriesInput{{Title: "Soups"}})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, f.categories.Archive(ctx, created[0].ID.Hex()))
	_, err = f.categories.Show(ctx, created[0].ID.Hex())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.categories.Archive(ctx, created[0].ID.Hex())))

	list, _ = f.categories.List(ctx)
	assert.Len(t, list, 1)

	_, err = f.categories.Show(ctx, "zzz")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFoodsInCategory(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	cats, err := f.categories.CreateMany(ctx, requests.CreateCategoriesInput{{Title: "Soups"}})
	require.NoError(t, err)
	catID := cats[0].ID.Hex()

	// Prime the cache so the add must invalidate it.
	_, err = f.categories.Show(ctx, catID)
	require.NoError(t, err)

	foods, err := f.foods.AddFoods(ctx, catID, requests.AddFoodsInput{
		{Title: "Tomato", Price: 4.5},
		{Title: "Onion", Price: 5},
	})
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, cats[0].ID, foods[0].CategoryID)

	detail, err := f.categories.Show(ctx, catID)
	require.NoError(t, err)
	assert.Len(t, detail.Foods, 2)
	assert.Len(t, detail.Category.Foods, 2)

	got, err := f.foods.Show(ctx, catID, foods[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Tomato", got.Title)

	_, err = f.foods.Show(ctx, primitive.NewObjectID().Hex(), foods[0].ID.Hex())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, f.foods.Remove(ctx, catID, foods[0].ID.Hex()))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.foods.Remove(ctx, catID, foods[0].ID.Hex())))

	detail, _ = f.categories.Show(ctx, catID)
	assert.Len(t, detail.Foods, 1)
	assert.Equal(t, []primitive.ObjectID{foods[1].ID}, detail.Category.Foods)

	_, err = f.foods.AddFoods(ctx, primitive.NewObjectID().Hex(), requests.AddFoodsInput{{Title: "X", Price: 1}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFoodImageUpload(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	cats, _ := f.categories.CreateMany(ctx, requests.CreateCategoriesInput{{Title: "Soups"}})
	catID := cats[0].ID.Hex()
	foods, err := f.foods.AddFoods(ctx, catID, requests.AddFoodsInput{{Title: "Tomato", Price: 4.5}})
	require.NoError(t, err)
	foodID := foods[0].ID.Hex()

	updated, err := f.foods.UploadImage(ctx, catID, foodID, "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/storage/foods/"+foodID+".png", updated.ImageURL)

	ok, err := f.disk.Exists(ctx, "foods/"+foodID+".png")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.foods.UploadImage(ctx, catID, foodID, "text/plain", strings.NewReader("x"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCategoryDetailCacheIgnoresIDCase(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	cats, err := f.categories.CreateMany(ctx, requests.CreateCategoriesInput{{Title: "Soups"}})
	require.NoError(t, err)
	upper := strings.ToUpper(cats[0].ID.Hex())

	detail, err := f.categories.Show(ctx, upper)
	require.NoError(t, err)
	assert.Empty(t, detail.Foods)

	_, err = f.foods.AddFoods(ctx, cats[0].ID.Hex(), requests.AddFoodsInput{{Title: "Tomato", Price: 4.5}})
	require.NoError(t, err)

	detail, err = f.categories.Show(ctx, upper)
	require.NoError(t, err)
	assert.Len(t, detail.Foods, 1)
}

func TestRemoveFoodFromOtherCategory(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	cats, err := f.categories.CreateMany(ctx, requests.CreateCategoriesInput{{Title: "Soups"}, {Title: "Mains"}})
	require.NoError(t, err)
	soups, mains := cats[0].ID.Hex(), cats[1].ID.Hex()

	foods, err := f.foods.AddFoods(ctx, mains, requests.AddFoodsInput{{Title: "Steak", Price: 18}})
	require.NoError(t, err)

	err = f.foods.Remove(ctx, soups, foods[0].ID.Hex())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := f.foods.Show(ctx, mains, foods[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Steak", got.Title)
	detail, err := f.categories.Show(ctx, mains)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{foods[0].ID}, detail.Category.Foods)
}
