package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resor-app/resor/app/repositories"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/pkg/broker"
	"github.com/resor-app/resor/pkg/cache"
	"github.com/resor-app/resor/pkg/database"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/storage"
)

// MongoStores returns the MongoDB-backed stores for db.
func MongoStores(db *mongo.Database) Stores {
	r := repositories.New(db)
	return Stores{
		Users:      r.Users,
		Categories: r.Categories,
		Foods:      r.Foods,
		Vouchers:   r.Vouchers,
		Orders:     r.Orders,
		Pinger:     r,
	}
}

// ConnectMongo dials MONGO_URI and returns the configured database.
func ConnectMongo(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	client, err := database.Connect(ctx, config.MongoURI())
	if err != nil {
		return nil, nil, err
	}
	return client, client.Database(config.MongoDatabase()), nil
}

// Boot reads the configuration, connects to the configured backends and
// returns a ready kernel. Redis and Kafka are optional: when unreachable or
// unset the kernel runs with the in-memory cache and without publishing.
func Boot(ctx context.Context) (_ *Kernel, err error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := Options{
		CacheTTL:  config.CacheTTL(),
		Policy:    services.PolicyFromConfig(),
		RateLimit: config.RateLimit(),
		Checks:    map[string]services.Pinger{},
	}
	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	switch driver := config.DatabaseDriver(); driver {
	case "memory":
		logger.Setup()
		opts.Stores = MemoryStores()
	case "mongo":
		client, db, err := ConnectMongo(ctx)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() error { return database.Disconnect(client) })
		if err := database.EnsureIndexes(ctx, db); err != nil {
			logger.Warn("index creation failed", "error", err)
		}
		if config.LogMongo() {
			sink := logger.NewMongoHandler(db, slog.LevelInfo)
			logger.Setup(sink)
			closers = append(closers, func() error { sink.Close(); return nil })
		} else {
			logger.Setup()
		}
		opts.Stores = MongoStores(db)
	default:
		return nil, fmt.Errorf("kernel: unknown DB_DRIVER %q (supported: mongo, memory)", driver)
	}

	if addr := config.RedisAddr(); addr != "" {
		rc, err := cache.Connect(ctx, addr, config.RedisPassword())
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", "addr", addr, "error", err)
		} else {
			opts.Cache = rc
			opts.Checks["cache"] = rc
			closers = append(closers, rc.Close)
		}
	}

	disk, err := storage.Open(storage.FromConfig())
	if err != nil {
		return nil, err
	}
	opts.Disk = disk

	pub, perr := broker.NewClient(config.KafkaBrokers()).Producer(config.KafkaOrderTopic())
	switch {
	case errors.Is(perr, broker.ErrDisabled):
		logger.Debug("kafka disabled, order events stay in-process")
	case perr != nil:
		return nil, perr
	default:
		opts.Publisher = pub
	}

	k, err := New(opts)
	if err != nil {
		return nil, err
	}
	for _, c := range closers {
		k.OnClose(c)
	}
	return k, nil
}
