package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"stocklock/internal/config"
	"stocklock/internal/http/handlers"
	applog "stocklock/internal/log"
	"stocklock/internal/repos"
	"stocklock/internal/services"
)

func main() {
	cfg := config.Load()
	applog.Setup(cfg.LogFile)

	db, err := repos.OpenDB(cfg.DBDSN, cfg.Seed)
	if err != nil {
		applog.Logger.Fatal().Err(err).Msg("cannot open database")
	}

	deps := handlers.NewDeps(db, cfg)

	// Reload holds the previous process left active; expired ones are
	// reclaimed by the first sweep.
	if n, err := deps.Reservations.Rehydrate(); err != nil {
		applog.Logger.Fatal().Err(err).Msg("registry rehydration failed")
	} else if n > 0 {
		applog.Logger.Info().Int("reservations", n).Msg("registry rehydrated from mirror")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < http.StatusInternalServerError {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())

	handlers.Mount(app, deps)
	app.Get("/metrics", handlers.RequireAdmin(deps.Auth), adaptor.HTTPHandler(promhttp.Handler()))

	sweeper := services.NewSweeper(deps.Reservations, cfg.SweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		applog.Logger.Info().Str("port", cfg.Port).Msg("listening")
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		sweeper.Run(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil {
		applog.Logger.Error().Err(err).Msg("shutdown")
	}
	applog.Logger.Info().Msg("stocklock stopped")
}
