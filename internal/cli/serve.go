package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/apod-api/internal/api/http"
	"github.com/i474232898/apod-api/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serveCmd runs the HTTP API together with the daily refresh.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the daily refresh",
	Args:  cobra.NoArgs,
	RunE:  handleServe,
}

func handleServe(cmd *cobra.Command, args []string) error {
	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	// Daily refresh that keeps today's record warm.
	if rt.cfg.RefreshEnabled {
		sched, err := scheduler.New(rt.cfg.RefreshAt, rt.service, rt.log)
		if err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	} else {
		rt.log.Infow("daily refresh disabled")
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "apod-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "apod-api",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, rt.service)

	listenErr := make(chan error, 1)
	go func() {
		rt.log.Infow("http server listening", "port", rt.cfg.Port)
		listenErr <- app.Listen(":" + rt.cfg.Port)
	}()

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		return fmt.Errorf("fiber server stopped: %w", err)
	}

	rt.log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		rt.log.Errorw("error during shutdown", "err", err)
	}
	return nil
}
