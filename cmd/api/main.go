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
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"recruitforge/hiring-engine/internal/config"
	"recruitforge/hiring-engine/internal/handlers"
	"recruitforge/hiring-engine/internal/logger"
	"recruitforge/hiring-engine/internal/repositories"
	"recruitforge/hiring-engine/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	zapLogger.Info("database connected and migrated")

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	rankingRepo := repositories.NewRankingRepository(db)

	// Initialize GenAI client (shared by the Gemini provider and the
	// embedding service)
	ctx := context.Background()
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		zapLogger.Fatal("failed to create genai client", zap.Error(err))
	}

	// Build providers in configured failover order
	providers := make([]services.GenerationProvider, 0, len(cfg.Gateway.ProviderOrder))
	for _, name := range cfg.Gateway.ProviderOrder {
		switch name {
		case "gemini":
			providers = append(providers, services.NewGeminiProvider(genaiClient, cfg.Gemini.Model))
		case "claude":
			providers = append(providers, services.NewClaudeProvider(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Claude.BaseURL))
		case "ollama":
			providers = append(providers, services.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model))
		default:
			zapLogger.Warn("unknown provider in PROVIDER_ORDER, skipping", zap.String("provider", name))
		}
	}
	if len(providers) == 0 {
		zapLogger.Fatal("no generation providers configured")
	}

	gateway := services.NewProviderGateway(
		providers,
		cfg.Gateway.GenerateTimeout,
		cfg.Gateway.HealthTimeout,
		zapLogger,
	)
	zapLogger.Info("provider gateway initialized", zap.Strings("order", cfg.Gateway.ProviderOrder))

	// Initialize embedding service and vector index
	embedder := services.NewGeminiEmbeddingService(genaiClient, cfg.Gemini.EmbedModel)

	vectorIndex, err := services.NewVectorIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		zapLogger.Fatal("failed to initialize vector index", zap.Error(err))
	}
	if err := vectorIndex.InitCollection(); err != nil {
		zapLogger.Fatal("failed to initialize vector collection", zap.Error(err))
	}
	zapLogger.Info("vector index initialized", zap.String("collection", cfg.Qdrant.Collection))

	// Initialize the scoring and screening core
	scorer, err := services.NewMatchScorer(embedder, vectorIndex, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize match scorer", zap.Error(err))
	}

	screeningService := services.NewScreeningService(gateway, sessionRepo, jobRepo, candidateRepo, zapLogger)
	rankingService := services.NewRankingService(rankingRepo, jobRepo, candidateRepo, scorer, zapLogger)

	// Initialize and start the ranking worker
	worker := services.NewWorker(rankingRepo, rankingService, cfg.Worker.Concurrency, zapLogger)
	worker.Start(ctx)

	// Initialize handlers
	screeningHandler := handlers.NewScreeningHandler(screeningService)
	matchHandler := handlers.NewMatchHandler(rankingRepo, jobRepo, worker, vectorIndex, embedder)
	healthHandler := handlers.NewHealthHandler(gateway)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Hiring Engine API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	api.Get("/providers/health", healthHandler.HandleProviderHealth)

	// Screening endpoints
	api.Post("/screenings", screeningHandler.HandleStart)
	api.Post("/screenings/:id/responses", screeningHandler.HandleSubmitResponse)
	api.Get("/screenings/:id/summary", screeningHandler.HandleSummary)

	// Matching endpoints
	api.Post("/jobs/:id/rank", matchHandler.HandleRank)
	api.Get("/jobs/:id/similar", matchHandler.HandleSimilarCandidates)
	api.Get("/rankings/:id", matchHandler.HandleGetRanking)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Hiring Engine API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/providers/health",
				"POST /api/v1/screenings",
				"POST /api/v1/screenings/:id/responses",
				"GET /api/v1/screenings/:id/summary",
				"POST /api/v1/jobs/:id/rank",
				"GET /api/v1/jobs/:id/similar",
				"GET /api/v1/rankings/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zapLogger.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zapLogger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLogger.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
