package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/catalog"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/config"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/database"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/handler"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/llm"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/middleware"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/repository"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/service"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// PostgreSQL is optional: without it the service runs on default
	// weights and skips snapshot/profile persistence.
	var db *sql.DB
	if db, err = database.NewPostgres(cfg.DB); err != nil {
		slog.Warn("running without PostgreSQL", "error", err)
		db = nil
	} else {
		defer db.Close()
	}

	// Redis is optional: without it result caching and rate limiting are
	// disabled.
	var rdb *redis.Client
	if rdb, err = database.NewRedis(cfg.Redis); err != nil {
		slog.Warn("running without Redis", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// Select LLM backend
	var llmClient llm.Client
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
		slog.Info("using chat-completions LLM client", "model", cfg.LLM.Model)
	} else {
		llmClient = llm.NewRuleBasedClient()
		slog.Info("no LLM API key configured, using rule-based client")
	}

	// Select catalog backend
	var searcher catalog.Searcher
	if cfg.Catalog.ShopDomain != "" && cfg.Catalog.AccessToken != "" {
		searcher = catalog.NewStorefrontClient(cfg.Catalog.ShopDomain, cfg.Catalog.AccessToken)
		slog.Info("using Shopify storefront catalog", "shop", cfg.Catalog.ShopDomain)
	} else {
		searcher = catalog.NewMemoryCatalog()
		slog.Info("no storefront configured, using in-memory catalog")
	}

	// Initialize layers
	var ruleStore service.RuleStore
	var profileHandler *handler.ProfileHandler
	if db != nil {
		ruleStore = repository.NewGiftFinderRepository(db)
		profileSvc := service.NewProfileService(repository.NewProfileRepository(db), rdb)
		profileHandler = handler.NewProfileHandler(profileSvc)
	}
	svc := service.NewGiftFinderService(llmClient, searcher, ruleStore, rdb, cfg.IntentCacheSize, cfg.CatalogCacheSize)
	h := handler.NewGiftFinderHandler(svc)

	// Load swagger spec
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger spec not found, swagger UI will be unavailable", "error", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "gift-finder-service",
		ServerHeader: "gift-finder-service",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.NewRateLimiter(rdb, 60, 60).Handler())

	// Swagger
	if swaggerYAML != nil {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	// Routes
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Post("/gift-bundles", h.GenerateBundles)
	api.Get("/rules", h.GetRules)

	if profileHandler != nil {
		api.Post("/profiles", profileHandler.SaveProfile)
		api.Get("/profiles", profileHandler.ListProfiles)
		api.Get("/profiles/:id", profileHandler.GetProfile)
		api.Put("/profiles/:id", profileHandler.UpdateProfile)
		api.Delete("/profiles/:id", profileHandler.DeleteProfile)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("gift-finder-service starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down gift-finder-service")
	_ = app.Shutdown()
}
