// Package main wires the HTTP server for the task management service.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"task-manager/config"
	"task-manager/internal/auth"
	"task-manager/internal/entities"
	"task-manager/internal/pkg/metrics"
	"task-manager/internal/pkg/tracing"
	"task-manager/internal/repository"
	"task-manager/internal/transport/http/middleware"
	"task-manager/internal/transport/http/server/handlers-fiber"
	"task-manager/internal/usecase"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

const healthTimeout = 2 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		log.Errorw("tracing initialization error", "error", err)
		return
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warnw("failed to flush traces", "error", err)
		}
	}()

	repo, err := repository.New(ctx, "postgres", log, cfg)
	if err != nil {
		log.Errorw("repository initialization error", "error", err)
		return
	}
	if err := repo.OnStart(ctx); err != nil {
		log.Errorw("repository start error", "error", err)
		return
	}
	defer func() {
		_ = repo.OnStop(context.Background())
	}()

	var (
		revoker usecase.TokenRevoker = auth.NopRevoker{}
		rdb     *redis.Client
	)
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		redisRevoker := auth.NewRedisRevoker(rdb)
		if err := redisRevoker.Ping(ctx); err != nil {
			log.Errorw("redis start error", "error", err, "addr", cfg.Redis.Addr)
			return
		}
		revoker = redisRevoker
		log.Infow("token revocation enabled", "addr", cfg.Redis.Addr)
	} else {
		log.Warnw("redis is not configured, logout will not revoke tokens")
	}

	m := metrics.New()
	timeout := cfg.HTTP.RequestTimeout
	uc := usecase.New(log, ctx, repo, timeout, usecase.Options{
		Hasher:        auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Revoker:       revoker,
		Metrics:       m,
		RetentionDays: cfg.History.RetentionDays,
	})

	if cfg.Seed.Enabled() {
		created, err := uc.EnsureAdmin(ctx, entities.NewUser{
			Name:     cfg.Seed.AdminName,
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
		})
		if err != nil {
			log.Errorw("failed to seed admin", "error", err)
			return
		}
		if created {
			log.Infow("seeded admin account", "email", cfg.Seed.AdminEmail)
		}
	}

	serv := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	serv.Use(recover.New())
	serv.Use(requestid.New())
	serv.Use(middleware.Tracing())
	serv.Use(middleware.Metrics(m))
	serv.Use(middleware.RequestLogger(log))

	serv.Get("/healthz", func(c *fiber.Ctx) error {
		hctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := repo.Ping(hctx); err != nil {
			log.Warnw("health check failed", "component", "postgres", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "component": "postgres"})
		}
		if rdb != nil {
			if err := rdb.Ping(hctx).Err(); err != nil {
				log.Warnw("health check failed", "component", "redis", "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "component": "redis"})
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	serv.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	h := handlers_fiber.NewHandler(log, uc)
	handlers_fiber.RegisterHandlers(serv.Group("/api"), h)

	go func() {
		if err := serv.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = serv.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
	}
}
