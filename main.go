package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"arthemis/internal/config"
	"arthemis/internal/handlers"
	"arthemis/internal/logger"
	"arthemis/internal/middleware"
	"arthemis/internal/repositories"
	"arthemis/internal/services"
	"arthemis/pkg/genai"
	"arthemis/pkg/imagestore"
	"arthemis/pkg/rabbitmq"
)

// Dependencies are the external adapters of the API. Nil members disable the
// feature they back.
type Dependencies struct {
	Images    services.ImageStore
	Events    services.EventPublisher
	Generator services.Generator
}

// NewApp builds the Fiber app over store. The artwork service is returned so
// that callers can drain its background view updates on shutdown.
func NewApp(cfg *config.Config, store *repositories.Store, log *zap.SugaredLogger, deps Dependencies) (*fiber.App, *services.ArtworkService) {
	// --- Initialize Services ---
	authService := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.JWTExpire, cfg.ResetPasswordURL, deps.Events, log)
	artworkService := services.NewArtworkService(store.Artworks, store.Users, store.Comments, deps.Images, deps.Events, log, cfg.MaxFileUpload)
	collectionService := services.NewCollectionService(store.Collections, store.Artworks, store.Users, deps.Events, log)
	curationService := services.NewCurationService(deps.Generator, cfg.CurationTTL, log)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, !cfg.IsDevelopment())
	artworkHandler := handlers.NewArtworkHandler(artworkService, authService)
	collectionHandler := handlers.NewCollectionHandler(collectionService, authService)
	curationHandler := handlers.NewCurationHandler(curationService)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "arthemis",
		BodyLimit:    int(cfg.MaxFileUpload) + 1<<20,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	origins := cfg.CORSOrigin
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: origins != "*",
	}))
	app.Use(middleware.Metrics())

	// --- API Routes ---
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	artworkHandler.RegisterRoutes(api)
	collectionHandler.RegisterRoutes(api)
	curationHandler.RegisterRoutes(api)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status, code := "healthy", fiber.StatusOK
		database := "connected"
		if err := store.Ping(ctx); err != nil {
			log.Warnw("health check failed", "driver", store.Driver(), "error", err)
			status, code, database = "unhealthy", fiber.StatusServiceUnavailable, "unreachable"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"driver":   store.Driver(),
			"database": database,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app, artworkService
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.SentryDSN)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logr.Sync()

	ctx := context.Background()

	// --- Initialize Store ---
	store, err := repositories.Open(ctx, repositories.Options{
		Driver:        cfg.DatabaseDriver,
		DSN:           cfg.DatabaseDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		logr.Fatalw("Failed to open store", "driver", cfg.DatabaseDriver, "error", err)
	}
	logr.Infow("Store opened", "driver", store.Driver())

	var deps Dependencies

	// --- Initialize RabbitMQ Client ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		}, logr)
		if err != nil {
			logr.Fatalw("Failed to initialize RabbitMQ client", "error", err)
		}
		deps.Events = mqClient

		go func() {
			logr.Info("Starting RabbitMQ consumer for domain events...")
			if err := mqClient.Consume(rabbitmq.LogEvent(logr)); err != nil {
				logr.Errorw("Failed to start RabbitMQ consumer", "error", err)
			}
		}()
	} else {
		logr.Info("RABBITMQ_URL not set, domain events are disabled")
	}

	// --- Initialize Image CDN ---
	if cfg.S3.Enabled() {
		images, err := imagestore.New(ctx, imagestore.Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			CDNBaseURL:      cfg.S3.CDNBaseURL,
		})
		if err != nil {
			logr.Fatalw("Failed to initialize image store", "error", err)
		}
		deps.Images = images
	} else {
		logr.Info("S3_BUCKET not set, image uploads are disabled")
	}

	// --- Initialize AI client ---
	gen := genai.New(genai.Config{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
	})
	if !gen.Enabled() {
		logr.Info("GEMINI_API_KEY not set, curation serves default payloads")
	}
	deps.Generator = gen

	app, artworkService := NewApp(cfg, store, logr, deps)

	// --- Start HTTP Server ---
	logr.Infow("Starting server", "port", cfg.AppPort, "env", cfg.AppEnv)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logr.Fatalw("Server failed to start", "error", err)
		}
	}()

	<-quit
	logr.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logr.Errorw("Error during Fiber shutdown", "error", err)
	}
	artworkService.Wait()

	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			logr.Errorw("Error closing RabbitMQ client", "error", err)
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		logr.Errorw("Error closing store", "error", err)
	}
	logr.Info("Server gracefully stopped")
}
