package routes

import (
	"net/http"

	"github.com/resor-app/resor/app/controllers"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/auth"
	"github.com/resor-app/resor/pkg/ctx"
	"github.com/resor-app/resor/pkg/metrics"
	"github.com/resor-app/resor/pkg/middleware"
	"github.com/resor-app/resor/pkg/rbac"
	"github.com/resor-app/resor/pkg/router"
	"github.com/resor-app/resor/pkg/ws"
)

// Deps carries everything the route table binds to.
type Deps struct {
	Auth       *services.AuthService
	Categories *services.CategoryService
	Foods      *services.FoodService
	Vouchers   *services.VoucherService
	Orders     *services.OrderService
	Health     *services.HealthService
	Hub        *ws.Hub
	// Files serves stored uploads under /storage. Nil for remote disks.
	Files http.Handler
}

// Register binds the full route table on r.
func Register(r *router.Router, d Deps) {
	RegisterWeb(r, d)
	RegisterAPI(r, d)
}

// RegisterWeb binds the public, unversioned endpoints.
func RegisterWeb(r *router.Router, d Deps) {
	health := controllers.NewHealthController(d.Health)
	authCtl := controllers.NewAuthController(d.Auth)

	r.Get("/", "welcome", ctx.Wrap(health.Welcome))
	r.Get("/health", "health", ctx.Wrap(health.Health))
	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Post("/register", "auth.register", ctx.Wrap(authCtl.Register))
	r.Post("/login", "auth.login", ctx.Wrap(authCtl.Login))

	if d.Files != nil {
		r.Mount("/storage", http.StripPrefix("/storage", d.Files))
	}
}

func RegisterAPI(r *router.Router, d Deps) {
	categories := controllers.NewCategoryController(d.Categories)
	foods := controllers.NewFoodController(d.Foods)
	vouchers := controllers.NewVoucherController(d.Vouchers)
	orders := controllers.NewOrderController(d.Orders)
	feed := controllers.NewFeedController(d.Hub)

	api := r.Group("/api")

	api.Get("/categories", "categories.index", ctx.Wrap(categories.Index))
	api.Get("/categories/{categoryId}", "categories.show", ctx.Wrap(categories.Show))
	api.Get("/categories/{categoryId}/foods/{foodId}", "foods.show", ctx.Wrap(foods.Show))

	user := api.Group("", middleware.AuthMiddleware)
	admin := user.Group("", rbac.HasRole(auth.RoleAdmin))

	admin.Post("/categories", "categories.store", ctx.Wrap(categories.Store))
	admin.Delete("/categories/{categoryId}", "categories.destroy", ctx.Wrap(categories.Destroy))
	admin.Post("/categories/{categoryId}/foods", "foods.store", ctx.Wrap(foods.Store))
	admin.Delete("/categories/{categoryId}/foods/{foodId}", "foods.destroy", ctx.Wrap(foods.Destroy))
	admin.Put("/categories/{categoryId}/foods/{foodId}/image", "foods.image", ctx.Wrap(foods.UploadImage))

	admin.Get("/vouchers", "vouchers.index", ctx.Wrap(vouchers.Index))
	admin.Post("/vouchers", "vouchers.store", ctx.Wrap(vouchers.Store))

	user.Get("/users/{userId}/orders", "orders.index", ctx.Wrap(orders.Index))
	user.Post("/users/{userId}/orders", "orders.store", ctx.Wrap(orders.Store))
	user.Get("/orders/{orderId}", "orders.show", ctx.Wrap(orders.Show))
	admin.Patch("/orders/{orderId}", "orders.update", ctx.Wrap(orders.Update))
	admin.Delete("/orders/{orderId}", "orders.destroy", ctx.Wrap(orders.Destroy))

	admin.Get("/ws/orders", "orders.feed", ctx.Wrap(feed.Orders))
}
