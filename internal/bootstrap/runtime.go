// Package bootstrap connects the configured store and Redis and wires the repositories.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/austinzumbro/nosql-social-api/internal/cache"
	"github.com/austinzumbro/nosql-social-api/internal/config"
	"github.com/austinzumbro/nosql-social-api/internal/database"
	"github.com/austinzumbro/nosql-social-api/internal/featureflags"
	"github.com/austinzumbro/nosql-social-api/internal/notifications"
	"github.com/austinzumbro/nosql-social-api/internal/repository"
	"github.com/austinzumbro/nosql-social-api/internal/repository/mongostore"
	"github.com/austinzumbro/nosql-social-api/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connected stores and the services built on them.
type Runtime struct {
	Users       repository.UserRepository
	Thoughts    repository.ThoughtRepository
	Maintenance repository.MaintenanceRepository

	Redis    *redis.Client
	Notifier *notifications.Notifier
	Flags    *featureflags.Manager

	UserService    *service.UserService
	ThoughtService *service.ThoughtService

	closers []func(context.Context) error
}

// InitRuntime connects to the store selected by STORE_DRIVER and to Redis.
// Redis is optional: without it caching, rate limiting and events are skipped.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		rt.Users, rt.Thoughts, rt.Maintenance = store.Users(), store.Thoughts(), store.Maintenance()
		rt.closers = append(rt.closers, store.Close)
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.useSQL(db)
	}

	if cfg.RedisURL != "" {
		rt.Redis = cache.InitRedis(cfg.RedisURL)
	}
	if rt.Redis != nil {
		rdb := rt.Redis
		rt.closers = append(rt.closers, func(context.Context) error { return rdb.Close() })
	}

	rt.Flags = featureflags.NewManager(cfg.FeatureFlags)
	rt.wireServices()
	return rt, nil
}

// NewSQLRuntime wires an already-open gorm handle. Tests use it with in-memory sqlite.
func NewSQLRuntime(db *gorm.DB, rdb *redis.Client, flags *featureflags.Manager) *Runtime {
	rt := &Runtime{Redis: rdb, Flags: flags}
	rt.useSQL(db)
	rt.wireServices()
	return rt
}

func (rt *Runtime) useSQL(db *gorm.DB) {
	rt.Users = repository.NewUserRepository(db)
	rt.Thoughts = repository.NewThoughtRepository(db)
	rt.Maintenance = repository.NewMaintenanceRepository(db)
	rt.closers = append(rt.closers, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
}

func (rt *Runtime) wireServices() {
	var events notifications.Publisher
	if rt.Redis != nil {
		rt.Notifier = notifications.NewNotifier(rt.Redis)
		events = rt.Notifier
	}
	rt.UserService = service.NewUserService(rt.Users, rt.Thoughts, events, rt.Flags)
	rt.ThoughtService = service.NewThoughtService(rt.Thoughts, rt.Users, events)
}

// Close releases every connection in reverse order of opening.
func (rt *Runtime) Close(ctx context.Context) error {
	var firstErr error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			slog.WarnContext(ctx, "runtime close failed", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	rt.closers = nil
	return firstErr
}
