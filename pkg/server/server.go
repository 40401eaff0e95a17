// Package server assembles the contact API from configuration: databases,
// caches, auth and the HTTP server.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duccv/contact-addin/config"
	"github.com/duccv/contact-addin/internal/constant"
	"github.com/duccv/contact-addin/internal/handler"
	"github.com/duccv/contact-addin/internal/middleware"
	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/password"
	"github.com/duccv/contact-addin/internal/store"
	"github.com/duccv/contact-addin/internal/store/cached"
	"github.com/duccv/contact-addin/internal/store/memory"
	"github.com/duccv/contact-addin/internal/store/mongodb"
	"github.com/duccv/contact-addin/internal/store/postgres"
	"github.com/duccv/contact-addin/internal/token"
	"github.com/duccv/contact-addin/pkg/cache"
	"github.com/duccv/contact-addin/pkg/database"
	"github.com/duccv/contact-addin/pkg/metrics"
	http_server "github.com/duccv/contact-addin/pkg/server/http"
	"github.com/duccv/contact-addin/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App is a fully wired service instance.
type App struct {
	HTTP *http_server.Server

	registry        *database.Registry
	redis           redis.UniversalClient
	memCache        cache.Cache
	shutdownTracing telemetry.ShutdownFunc
}

// New connects the configured backends and mounts every route. Redis is
// optional: when it is disabled or unreachable the caches and limiters
// stay in process memory.
func New(ctx context.Context, env *config.Env) (*App, error) {
	app := &App{
		registry:        database.NewRegistry(),
		shutdownTracing: telemetry.Setup(ctx, env.TelemetryConfig, env.AppConfig.Name, env.AppConfig.Version),
	}

	users, contacts, err := openStores(ctx, env, app.registry)
	if err != nil {
		app.close()
		return nil, err
	}

	if env.RedisConfig.Enabled {
		rdb, err := cache.NewRedisClient(env.RedisConfig)
		if err != nil {
			zap.L().Warn("Redis unavailable, using in-memory cache and rate limits", zap.Error(err))
		} else {
			app.redis = rdb
		}
	}

	app.memCache = cache.NewCache(env.CacheConfig)
	contacts = cached.NewContactStore(
		contacts,
		app.memCache,
		app.redis,
		time.Duration(env.CacheConfig.DefaultTTL)*time.Second,
		time.Duration(env.CacheConfig.RedisTTL)*time.Second,
	)

	codec, err := token.NewCodec(token.Config{
		Secret:   []byte(env.JWTConfig.Secret),
		Expiry:   time.Duration(env.JWTConfig.Expiry) * time.Hour,
		Issuer:   env.JWTConfig.Issuer,
		Audience: env.JWTConfig.Audience,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("token codec: %w", err)
	}

	if env.MetricsConfig.Enabled {
		metrics.Register()
	}

	mwCfg := middleware.NewMiddlewareConfig(env)
	globalLimit, authLimit := passThrough, passThrough
	if mwCfg.RateLimitEnabled {
		globalLimit = middleware.NewRateLimiter("global", app.redis, mwCfg.RateLimitWindow, mwCfg.RateLimitMax, constant.TOO_MANY_REQUESTS).Limit()
		authLimit = middleware.NewRateLimiter("auth", app.redis, mwCfg.RateLimitWindow, mwCfg.AuthRateLimitMax, constant.TOO_MANY_LOGIN_ATTEMPTS).Limit()
	}

	app.HTTP = http_server.New(env,
		http_server.Port(env.AppConfig.Port),
		http_server.Timeout(time.Duration(env.AppConfig.RequestTimeout)*time.Second),
		http_server.ShutdownTimeout(time.Duration(env.AppConfig.ShutdownTimeout)*time.Second),
		http_server.APIMiddleware(globalLimit),
	)

	debug := !env.IsProduction()
	gate := middleware.NewJWTAuthMiddleware(codec, users)
	health := handler.NewHealthHandler(env.AppConfig.Version, healthChecker{registry: app.registry, redis: app.redis})

	app.HTTP.App.GET("/health", health.Health)
	app.HTTP.API.GET("/health", health.Health)
	handler.NewAuthHandler(users, password.NewHasher(password.DefaultCost), codec, debug).RegisterRoutes(app.HTTP.API, gate, authLimit)
	handler.NewContactHandler(contacts, debug).RegisterRoutes(app.HTTP.API, gate)

	return app, nil
}

func passThrough(c *gin.Context) { c.Next() }

func openStores(ctx context.Context, env *config.Env, registry *database.Registry) (store.UserStore, store.ContactStore, error) {
	seed := env.ContactsConfig.SeedDemo

	switch env.ContactsConfig.Backend {
	case "postgres":
		pg := database.NewPostgresDB(env.PostgresConfig)
		if err := registry.Connect(ctx, "postgres", pg); err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, pg.Write()); err != nil {
			return nil, nil, err
		}
		if seed {
			if err := postgres.SeedContacts(ctx, pg.Write(), store.DemoContacts()); err != nil {
				return nil, nil, err
			}
		}
		return postgres.NewUserStore(pg.Write()), postgres.NewContactStore(pg.Read()), nil

	case "mongodb":
		m := database.NewMongoDB(env.MongoConfig)
		if err := registry.Connect(ctx, "mongodb", m); err != nil {
			return nil, nil, err
		}
		users := mongodb.NewUserStore(m.Database())
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		contacts := mongodb.NewContactStore(m.Database(), env.MongoConfig.Collection)
		if err := contacts.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		if seed {
			if err := contacts.Seed(ctx, store.DemoContacts()); err != nil {
				return nil, nil, err
			}
		}
		return users, contacts, nil

	default:
		zap.L().Warn("Using in-memory stores; data is lost on restart")
		var demo []model.Contact
		if seed {
			demo = store.DemoContacts()
		}
		return memory.NewUserStore(), memory.NewContactStore(demo...), nil
	}
}

// healthChecker adds Redis to the database registry report.
type healthChecker struct {
	registry *database.Registry
	redis    redis.UniversalClient
}

func (h healthChecker) HealthCheck(ctx context.Context) map[string]string {
	out := h.registry.HealthCheck(ctx)
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			out["redis"] = err.Error()
		} else {
			out["redis"] = "ok"
		}
	}
	return out
}

// Shutdown stops accepting requests, drains the server and releases every
// connection.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.HTTP.Shutdown(ctx)
	a.close()
	return err
}

func (a *App) close() {
	if a.memCache != nil {
		a.memCache.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.L().Warn("Error closing Redis", zap.Error(err))
		}
	}
	a.registry.CloseAll()
	if err := a.shutdownTracing(context.Background()); err != nil {
		zap.L().Warn("Error shutting down tracing", zap.Error(err))
	}
}

// StartServer runs the service until SIGINT/SIGTERM or a listener error.
func StartServer(env *config.Env) error {
	ctx := context.Background()
	app, err := New(ctx, env)
	if err != nil {
		return err
	}

	app.HTTP.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		zap.L().Info("Shutting down", zap.String("signal", s.String()))
	case err = <-app.HTTP.Notify():
		if err != nil {
			zap.L().Error("HTTP server stopped", zap.Error(err))
		}
	}

	if shutdownErr := app.Shutdown(ctx); shutdownErr != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(shutdownErr))
	}
	return err
}
