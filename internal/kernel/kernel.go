// Package kernel assembles the application: stores, services, event
// listeners and the HTTP handler with its middleware stack.
package kernel

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/resor-app/resor/app/listeners"
	"github.com/resor-app/resor/app/repositories/memory"
	"github.com/resor-app/resor/app/routes"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/broker"
	"github.com/resor-app/resor/pkg/cache"
	"github.com/resor-app/resor/pkg/event"
	"github.com/resor-app/resor/pkg/metrics"
	"github.com/resor-app/resor/pkg/middleware"
	"github.com/resor-app/resor/pkg/reqid"
	"github.com/resor-app/resor/pkg/response"
	"github.com/resor-app/resor/pkg/router"
	"github.com/resor-app/resor/pkg/storage"
	"github.com/resor-app/resor/pkg/workerpool"
	"github.com/resor-app/resor/pkg/ws"
)

// Stores is one store per collection plus the database health probe.
type Stores struct {
	Users      services.UserStore
	Categories services.CategoryStore
	Foods      services.MenuItemStore
	Vouchers   services.VoucherStore
	Orders     services.OrderStore
	Pinger     services.Pinger
}

// MemoryStores returns fresh in-memory stores.
func MemoryStores() Stores {
	m := memory.New()
	return Stores{
		Users:      m.Users,
		Categories: m.Categories,
		Foods:      m.Foods,
		Vouchers:   m.Vouchers,
		Orders:     m.Orders,
		Pinger:     m,
	}
}

// Options configures New. Zero values fall back to in-process defaults.
type Options struct {
	Stores    Stores
	Cache     cache.Store
	CacheTTL  time.Duration
	Disk      storage.Disk
	Publisher broker.Publisher
	Policy    services.OrderPolicy
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
	Workers   int
	// Checks are extra health probes next to the database.
	Checks map[string]services.Pinger
}

type Kernel struct {
	Stores    Stores
	Bus       *event.Bus
	Hub       *ws.Hub
	Pool      *workerpool.Pool
	Publisher broker.Publisher
	Services  routes.Deps

	router  *router.Router
	cancel  context.CancelFunc
	closers []func() error
}

// New wires every component and starts the websocket hub.
func New(opts Options) (*Kernel, error) {
	if opts.Stores.Users == nil {
		opts.Stores = MemoryStores()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Disk == nil {
		return nil, errors.New("kernel: no storage disk configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	k := &Kernel{
		Stores:    opts.Stores,
		Bus:       event.New(),
		Hub:       ws.NewHub(),
		Pool:      workerpool.New(opts.Workers),
		Publisher: opts.Publisher,
		cancel:    cancel,
	}
	go k.Hub.Run(ctx)

	listeners.Register(k.Bus, k.Hub, k.Pool, opts.Publisher)

	checks := map[string]services.Pinger{}
	if opts.Stores.Pinger != nil {
		checks["database"] = opts.Stores.Pinger
	}
	for name, p := range opts.Checks {
		checks[name] = p
	}

	st := opts.Stores
	k.Services = routes.Deps{
		Auth:       services.NewAuthService(st.Users),
		Categories: services.NewCategoryService(st.Categories, st.Foods, opts.Cache, opts.CacheTTL),
		Foods:      services.NewFoodService(st.Categories, st.Foods, opts.Cache, opts.Disk),
		Vouchers:   services.NewVoucherService(st.Vouchers),
		Orders:     services.NewOrderService(st.Users, st.Foods, st.Vouchers, st.Orders, k.Bus, opts.Policy),
		Health:     services.NewHealthService(checks),
		Hub:        k.Hub,
	}
	if local, ok := opts.Disk.(*storage.Local); ok {
		k.Services.Files = local.Handler()
	}

	k.router = buildRouter(k.Services, opts.RateLimit)
	return k, nil
}

// buildRouter applies the global middleware stack, outermost first:
// metrics, recovery, request id, request logger, CORS, rate limiter.
func buildRouter(deps routes.Deps, rateLimit int) *router.Router {
	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	if rateLimit > 0 {
		r.Use(middleware.RateLimit(rateLimit, time.Minute))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })

	routes.Register(r, deps)
	return r
}

func (k *Kernel) Router() *router.Router { return k.router }

func (k *Kernel) Handler() http.Handler { return k.router.Handler() }

// OnClose registers fn to run at Close, after the worker pool drains.
func (k *Kernel) OnClose(fn func() error) {
	k.closers = append(k.closers, fn)
}

// Close stops the hub, drains queued event publishes and then releases
// external connections in reverse registration order.
func (k *Kernel) Close() error {
	k.cancel()
	k.Pool.Shutdown()

	var errs []error
	if k.Publisher != nil {
		errs = append(errs, k.Publisher.Close())
	}
	for i := len(k.closers) - 1; i >= 0; i-- {
		errs = append(errs, k.closers[i]())
	}
	return errors.Join(errs...)
}
