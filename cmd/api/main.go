package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Modulos-api/internal/application/reconcile"
	"github.com/jhoicas/Modulos-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/Modulos-api/internal/interfaces/http"
	"github.com/jhoicas/Modulos-api/pkg/config"
	"github.com/jhoicas/Modulos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	if cfg.App.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN vacío: rutas de conciliación deshabilitadas")
	}

	ctx := context.Background()
	container, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.App.StoreDriver).Msg("no se pudo inicializar la aplicación")
	}
	defer container.Close()

	var scheduler *reconcile.Scheduler
	if cfg.Reconcile.Cron != "" {
		scheduler, err = reconcile.NewScheduler(container.Reconciler, cfg.Reconcile.Cron, cfg.Reconcile.Timeout(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("RECONCILE_CRON inválido")
		}
		scheduler.Start()
		log.Info().Str("cron", cfg.Reconcile.Cron).Msg("conciliación periódica programada")
	}

	// Immutable: Params, Query y headers se copian; los servicios conservan IDs y códigos
	// más allá de la petición.
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		Immutable:    true,
	})
	app.Use(recover.New())

	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Modulos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := container.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(container.Registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Modules:     container.Modules,
		Permissions: container.Permissions,
		Reconciler:  container.Reconciler,
		Logger:      log,
		JWTSecret:   cfg.JWT.Secret,
		AdminToken:  cfg.App.AdminToken,
	})

	go func() {
		addr := cfg.HTTP.Addr()
		log.Info().Str("addr", addr).Msg("servidor HTTP iniciado")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("servidor HTTP detenido")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error en shutdown")
	}
	log.Info().Msg("servidor detenido")
}
