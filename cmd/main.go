package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Avinkovic23/local-llm-project/internal/ai"
	"github.com/Avinkovic23/local-llm-project/internal/config"
	"github.com/Avinkovic23/local-llm-project/internal/database"
	"github.com/Avinkovic23/local-llm-project/internal/index"
	"github.com/Avinkovic23/local-llm-project/internal/language"
	"github.com/Avinkovic23/local-llm-project/internal/logger"
	"github.com/Avinkovic23/local-llm-project/internal/telemetry"
	"github.com/Avinkovic23/local-llm-project/middleware"
	"github.com/Avinkovic23/local-llm-project/routes"
	"github.com/Avinkovic23/local-llm-project/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("local-llm-project", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracer:", err)
		}
		defer shutdown()
	}

	// Open the users database
	users, err := database.Open(cfg.UsersDBPath)
	if err != nil {
		log.Fatal("Failed to open users database:", err)
	}
	defer users.Close()

	// Wire up the model providers
	embedder, generator, ollama, err := buildProviders(cfg)
	if err != nil {
		log.Fatal("Failed to initialize model providers:", err)
	}
	generation := ai.NewGenerationClient(generator, time.Duration(cfg.LLMTimeout)*time.Second)

	// Check the local model server; a failure is not fatal, the server
	// may come up later.
	if ollama != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := ollama.Ping(pingCtx); err != nil {
			logger.Warn("Ollama server unreachable", "url", cfg.OllamaURL, "error", err)
		}
		cancel()
	}

	// Document store and answering pipeline (builds the initial index)
	store, err := services.NewDocumentStore(cfg.DocsDir)
	if err != nil {
		log.Fatal("Failed to create document store:", err)
	}
	loader := services.NewPDFLoader(cfg.MaxChunkSize, cfg.ChunkOverlap)
	builder := index.NewBuilder(store, loader, embedder, 4)
	gate := language.NewGate()
	pipeline := services.NewPipeline(context.Background(), store, builder, embedder, generation, gate, cfg.RetrievalTopK)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg)
	roleMiddleware := middleware.NewRoleMiddleware()

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, users)
	routes.SetupAskRoutes(router, cfg, pipeline, authMiddleware)
	routes.SetupUploadRoutes(router, cfg, pipeline, authMiddleware, roleMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

// buildProviders returns the embedder and generator for the configured
// providers, plus the Ollama client when either capability uses it.
func buildProviders(cfg *config.Config) (ai.Embedder, ai.Generator, *ai.OllamaClient, error) {
	ollama := ai.NewOllamaClient(ai.OllamaConfig{
		BaseURL:        cfg.OllamaURL,
		EmbeddingModel: cfg.EmbeddingModel,
		LLMModel:       cfg.LLMModel,
		Timeout:        time.Duration(cfg.LLMTimeout) * time.Second,
	})

	var embedder ai.Embedder = ollama
	var generator ai.Generator = ollama

	if cfg.EmbeddingsProvider == "google" || cfg.LLMProvider == "google" {
		google, err := ai.NewGoogleClient(context.Background(), cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel, "")
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.EmbeddingsProvider == "google" {
			embedder = google
		}
		if cfg.LLMProvider == "google" {
			generator = google
		}
	}

	if cfg.EmbeddingsProvider != "ollama" && cfg.LLMProvider != "ollama" {
		ollama = nil
	}

	return embedder, generator, ollama, nil
}
