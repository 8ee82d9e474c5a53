package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	delivery "golang-filing-scryper/internal/filings/delivery/http"
	_ "golang-filing-scryper/internal/filings/docs"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API and the scheduled ingestion",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Filings Service", logger.Field("name", cfg.App.Name))

	c, err := buildComponents(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize components", logger.ErrorField(err))
	}
	defer c.Close()

	if cfg.Scheduler.Enabled {
		utils.GoSafe(func() {
			if err := c.scheduler.Start(ctx); err != nil {
				appLogger.Error("Scheduler stopped", logger.ErrorField(err))
			}
		})
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = delivery.NewRequestValidator()

	apiV1 := e.Group("/api/v1")
	delivery.NewFilingHandler(c.filings, c.news, appLogger).RegisterRoutes(apiV1)
	delivery.NewIngestionHandler(c.scheduler, appLogger).RegisterRoutes(apiV1.Group("/ingestions"))
	delivery.NewSummaryHandler(c.summaries, appLogger).RegisterRoutes(apiV1.Group("/summaries"))

	e.GET("/swagger/*", swagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})))

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}
