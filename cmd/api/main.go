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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/talent-matcher/internal/config"
	"alfredoptarigan/talent-matcher/internal/handlers"
	"alfredoptarigan/talent-matcher/internal/repositories"
	"alfredoptarigan/talent-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Matching.Validate(); err != nil {
		log.Fatalf("❌ Invalid matching configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	candRepo := repositories.NewCandidateRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	matchRepo := repositories.NewMatchResultRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	queueRepo := repositories.NewProcessingQueueRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	vectorStore, err := services.NewQdrantStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := vectorStore.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize notifier
	notifier := services.NewNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.BufferSize)
	log.Println("✅ Notifier initialized")

	// Initialize matching services
	criteriaScorer := services.NewCriteriaScorer(cfg.Matching)
	retriever := services.NewSemanticRetriever(vectorStore, cfg.Matching.RetrieverTimeout)
	composer := services.NewScoreComposer()

	matcherService := services.NewMatcherService(
		jobRepo,
		candRepo,
		matchRepo,
		retriever,
		criteriaScorer,
		composer,
		notifier,
		cfg.Matching.CandidateCap,
	)
	log.Println("✅ Matcher service initialized")

	feedbackTracker := services.NewFeedbackTracker(feedbackRepo, matchRepo, notifier)
	embedder := services.NewProfileEmbedder(candRepo, jobRepo, geminiService, vectorStore)

	// Initialize batch processor
	batchProcessor := services.NewBatchProcessor(
		queueRepo,
		matcherService,
		cfg.Batch.Concurrency,
		cfg.Batch.PollInterval,
	)
	log.Println("✅ Batch processor initialized successfully")

	// Start batch processor
	ctx := context.Background()
	batchProcessor.Start(ctx)
	log.Println("✅ Batch processor started successfully")

	// Initialize Handlers
	matchHandler := handlers.NewMatchHandler(matcherService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackTracker)
	batchHandler := handlers.NewBatchHandler(queueRepo, batchProcessor)
	embeddingHandler := handlers.NewEmbeddingHandler(embedder)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Talent Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
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

	// API endpoints
	api.Post("/match/run", matchHandler.HandleRunMatch)
	api.Post("/feedback", feedbackHandler.HandleSubmitFeedback)
	api.Post("/batch", batchHandler.HandleStartBatch)
	api.Get("/batch/:id", batchHandler.HandleBatchProgress)
	api.Post("/batch/:id/cancel", batchHandler.HandleCancelBatch)
	api.Post("/embeddings/refresh", embeddingHandler.HandleRefreshEmbedding)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Talent Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/match/run",
				"POST /api/v1/feedback",
				"POST /api/v1/batch",
				"GET /api/v1/batch/:id",
				"POST /api/v1/batch/:id/cancel",
				"POST /api/v1/embeddings/refresh",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		batchProcessor.Stop()
		notifier.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
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
