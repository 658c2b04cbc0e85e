package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alfredoptarigan/tender-evaluator/internal/config"
	"alfredoptarigan/tender-evaluator/internal/handlers"
	"alfredoptarigan/tender-evaluator/internal/repositories"
	"alfredoptarigan/tender-evaluator/internal/scoring"
	"alfredoptarigan/tender-evaluator/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	zeroPolicy, err := scoring.ParseZeroPolicy(cfg.Scoring.ZeroScorePolicy)
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Initialize storage
	var store *repositories.Store
	switch cfg.Store.Driver {
	case "memory":
		store = repositories.NewMemoryStore()
		log.Println("⚠️  Using in-memory store, data is lost on restart")
	default:
		db, err := config.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("❌ Failed to initialize database: %v", err)
		}
		store = repositories.NewGormStore(db)
	}
	log.Println("✅ Repositories initialized successfully")

	// Metrics
	var metrics services.Metrics = services.NopMetrics{}
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = services.NewPrometheusMetrics(registry)
		log.Println("✅ Metrics enabled")
	}

	// Initialize services
	templateRegistry := services.NewTemplateRegistry(store.Templates)
	assignmentService := services.NewAssignmentService(store.Assignments, store.Templates)
	submissionService := services.NewSubmissionService(store.Assignments, store.Templates, store.Submissions, metrics)
	standingsService := services.NewStandingsService(store.Assignments, store.Templates, store.Submissions, zeroPolicy, metrics)
	log.Println("✅ Services initialized successfully")

	ctx := context.Background()

	if cfg.Store.TemplateSeedPath != "" {
		created, err := services.SeedTemplatesFromFile(ctx, cfg.Store.TemplateSeedPath, templateRegistry, store.Templates)
		if err != nil {
			log.Fatalf("❌ Failed to seed templates: %v", err)
		}
		log.Printf("✅ Seeded %d templates from %s\n", created, cfg.Store.TemplateSeedPath)
	}

	decisionOpts := []services.DecisionServiceOption{
		services.WithMetrics(metrics),
		services.WithMinRevisionReasonLength(cfg.Scoring.MinRevisionReasonLength),
	}

	// Committee reports are optional and need Gemini
	var worker services.Worker
	if cfg.ReportingEnabled() {
		geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		log.Println("✅ Gemini AI initialized successfully")

		reportService := services.NewReportService(
			store.Decisions,
			store.Assignments,
			store.Templates,
			geminiService,
			metrics,
			cfg.Worker.RetryMaxAttempts,
		)

		worker = services.NewWorker(
			store.Decisions,
			reportService,
			cfg.Worker.Concurrency,
			cfg.Worker.PollInterval,
		)
		worker.Start(ctx)
		log.Println("✅ Report worker started successfully")

		decisionOpts = append(decisionOpts, services.WithReportQueue(worker))
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set, committee reports disabled")
	}

	decisionService := services.NewDecisionService(standingsService, assignmentService, store.Decisions, decisionOpts...)

	// Initialize Handlers
	h := handlers.Handlers{
		Templates:   handlers.NewTemplateHandler(templateRegistry),
		Assignments: handlers.NewAssignmentHandler(assignmentService),
		Scores:      handlers.NewScoreHandler(submissionService, standingsService),
		Decisions:   handlers.NewDecisionHandler(decisionService),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Tender Evaluation API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	handlers.RegisterRoutes(app.Group("/api/v1"), h)

	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Tender Evaluation API",
			"version":   "1.0.0",
			"endpoints": handlers.RouteList(app),
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if worker != nil {
			worker.Stop()
		}
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
