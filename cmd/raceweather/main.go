package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/raceday/raceweather/internal/api/http"
	"github.com/raceday/raceweather/internal/config"
	"github.com/raceday/raceweather/internal/logger"
	"github.com/raceday/raceweather/internal/scheduler"
	"github.com/raceday/raceweather/internal/store"
	"github.com/raceday/raceweather/internal/weather"
	"github.com/raceday/raceweather/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st weather.Store
	switch cfg.StoreBackend {
	case config.StoreMemory:
		st = store.NewMemory()
	default:
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal(err)
		}
		defer pg.Close()
		st = pg
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var geocodingOpts []providers.GeocodingOption
	if cfg.GeocodingBaseURL != "" {
		geocodingOpts = append(geocodingOpts, providers.WithGeocodingBaseURL(cfg.GeocodingBaseURL))
	}
	geocoder := providers.NewGeocodingClient(httpClient, geocodingOpts...)

	meteoOpts := []providers.OpenMeteoOption{providers.WithCacheTTL(cfg.CacheTTL)}
	if cfg.ForecastBaseURL != "" {
		meteoOpts = append(meteoOpts, providers.WithForecastBaseURL(cfg.ForecastBaseURL))
	}
	if cfg.HistoricalBaseURL != "" {
		meteoOpts = append(meteoOpts, providers.WithHistoricalBaseURL(cfg.HistoricalBaseURL))
	}
	forecasts := providers.NewOpenMeteoClient(httpClient, meteoOpts...)

	service := weather.NewService(st, geocoder, forecasts,
		weather.WithHistoryStartYear(cfg.HistoryStartYear),
		weather.WithForecastHorizon(cfg.ForecastHorizonDays),
	)

	if cfg.RefreshEnabled {
		sched := scheduler.New(service, st, cfg.RefreshInterval, cfg.ForecastHorizonDays)
		if err := sched.Start(); err != nil {
			logger.Fatal(err)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "raceweather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "raceweather",
		})
	})

	httpapi.RegisterRoutes(app, service, st)

	go func() {
		logger.Infof("raceweather listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Errorf("fiber server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("error during shutdown: %v", err)
	}
}
