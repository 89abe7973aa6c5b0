package seeders

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/internal/kernel"
	"github.com/resor-app/resor/pkg/auth"
)

func init() {
	Register("admin", seedAdmin)
	Register("menu", seedMenu)
}

// seedAdmin creates the admin account from ADMIN_EMAIL and ADMIN_PASSWORD.
func seedAdmin(ctx context.Context, st kernel.Stores) error {
	email := strings.ToLower(config.Get("ADMIN_EMAIL", "admin@resor.local"))
	existing, err := st.Users.FindByEmail(ctx, email)
	if err != nil || existing != nil {
		return err
	}
	hash, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "admin"))
	if err != nil {
		return err
	}
	return st.Users.Create(ctx, &models.User{
		FirstName: "Resor",
		LastName:  "Admin",
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
	})
}

type sampleCategory struct {
	title string
	foods []models.Food
}

var sampleMenu = []sampleCategory{
	{"Starters", []models.Food{
		{Title: "Tomato Soup", Price: 4.5, Calories: 180, WaitTime: 10, Ingredients: []string{"tomato", "basil", "cream"}},
		{Title: "Garlic Bread", Price: 3.25, Calories: 320, WaitTime: 8},
	}},
	{"Mains", []models.Food{
		{Title: "Margherita", Price: 9, Calories: 850, WaitTime: 20, Ingredients: []string{"dough", "tomato", "mozzarella"}},
		{Title: "Grilled Salmon", Price: 15.5, Calories: 560, WaitTime: 25},
	}},
	{"Desserts", []models.Food{
		{Title: "Tiramisu", Price: 5.75, Calories: 450, WaitTime: 5},
	}},
}

// seedMenu loads a sample menu into an empty catalog.
func seedMenu(ctx context.Context, st kernel.Stores) error {
	existing, err := st.Categories.FindAll(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, sc := range sampleMenu {
		cats, err := st.Categories.CreateMany(ctx, []models.Category{{Title: sc.title}})
		if err != nil {
			return err
		}
		foods := make([]models.Food, len(sc.foods))
		for i, f := range sc.foods {
			f.CategoryID = cats[0].ID
			foods[i] = f
		}
		created, err := st.Foods.CreateMany(ctx, foods)
		if err != nil {
			return err
		}
		ids := make([]primitive.ObjectID, len(created))
		for i, f := range created {
			ids[i] = f.ID
		}
		if err := st.Categories.AddFoods(ctx, cats[0].ID, ids); err != nil {
			return err
		}
	}
	return nil
}
