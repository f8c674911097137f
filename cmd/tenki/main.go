package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tenkiweb/tenki/internal/annotate"
	httpapi "github.com/tenkiweb/tenki/internal/api/http"
	"github.com/tenkiweb/tenki/internal/city"
	"github.com/tenkiweb/tenki/internal/config"
	"github.com/tenkiweb/tenki/internal/cooldown"
	"github.com/tenkiweb/tenki/internal/genai"
	"github.com/tenkiweb/tenki/internal/scheduler"
	"github.com/tenkiweb/tenki/internal/search"
	"github.com/tenkiweb/tenki/internal/weather"
	"github.com/tenkiweb/tenki/internal/weatherapi"
)

func main() {
	// Load configuration. A missing weather API key is fatal here:
	// without it no request could ever succeed.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	registry := city.NewRegistry()
	weatherClient := weatherapi.NewClient(httpClient, cfg.WeatherAPIKey)

	// Optional generative-text capability: summaries and AI fallback.
	var gen weather.Generator
	var summarizer annotate.Summarizer
	if cfg.GoogleAPIKey != "" {
		g := genai.NewClient(httpClient, cfg.GoogleAPIKey)
		gen = g
		summarizer = g
	} else {
		log.Println("INFO: GOOGLE_API_KEY not set; AI fallback and snippet summarization disabled")
	}

	// Optional search capability: pollen and yellow-sand observations.
	var searcher annotate.Searcher
	if cfg.BraveSearchAPIKey != "" {
		searcher = search.NewClient(httpClient, cfg.BraveSearchAPIKey)
	} else {
		log.Println("INFO: BRAVE_SEARCH_API_KEY not set; environmental summaries degraded")
	}

	annotator := annotate.New(searcher, summarizer, cooldown.NewTracker(cfg.ErrorCooldown), cfg.EnvCacheDuration)

	// Core orchestrator: cache, refresh decisions, degradation ladder.
	service := weather.NewService(registry, weatherClient, annotator, gen, weather.Options{
		CacheDuration: cfg.CacheDuration,
		ErrorCooldown: cfg.ErrorCooldown,
	})

	// Background cache warming so interactive requests hit a warm cache.
	sched := scheduler.New(registry, cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "tenki",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response; internal errors never leak as-is.
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "tenki",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
