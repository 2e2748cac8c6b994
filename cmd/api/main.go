package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paperapi/docs"
	"paperapi/internal/config"
	"paperapi/internal/database"
	"paperapi/internal/database/migration"
	handlers "paperapi/internal/http/handler"
	"paperapi/internal/http/middleware"
	"paperapi/internal/messaging"
	"paperapi/internal/otel"
	"paperapi/internal/repository/postgres"
	"paperapi/internal/service"
	"paperapi/internal/storage"
)

// @title Paper API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC
	ctx := context.Background()

	// Initialize OTLP tracing; degrades to noop when no collector is configured
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Create the papers schema on first start
	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Blob store: flat local directory by default, MinIO when configured
	store, err := newStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize blob storage: %v", err)
	}

	// WhatsApp bridge client; the bridge manages its own session lifecycle
	var msgClient messaging.Client
	if cfg.Messaging.GatewayURL != "" {
		msgClient, err = messaging.NewGateway(cfg.Messaging)
		if err != nil {
			log.Fatalf("failed to initialize messaging client: %v", err)
		}
	} else {
		log.Println(`{"level":"warn","msg":"WA_GATEWAY_URL not set, paper delivery disabled"}`)
		msgClient = messaging.Disabled()
	}

	// Initialize repository and service
	paperRepo := postgres.NewPaperPostgres(db)
	paperSvc := service.NewPaperService(store, paperRepo, msgClient, cfg.Messaging.AddressSuffix)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    50 * 1024 * 1024, // uploaded exam PDFs
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(cors.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(loc))

	reg := prometheus.NewRegistry()
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Serve stored PDFs directly when they live on local disk
	if cfg.Storage.Backend == "local" || cfg.Storage.Backend == "" {
		app.Static("/uploads", cfg.Storage.LocalDir)
	}

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, paperSvc)

	// SwaggerInfo is package-global state shared by all requests, so it is
	// configured once at startup rather than from request headers.
	docs.SwaggerInfo.Host = cfg.AppHost
	docs.SwaggerInfo.Schemes = []string{"http", "https"}
	app.Get("/swagger/*", swagger.HandlerDefault)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinIO(cfg.MinIO)
	case "local", "":
		return storage.NewLocal(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
