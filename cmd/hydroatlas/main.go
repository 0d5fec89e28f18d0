package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	ollamaai "hydroatlas/internal/ai/ollama"
	"hydroatlas/internal/api"
	"hydroatlas/internal/chat"
	"hydroatlas/internal/config"
	"hydroatlas/internal/database/postgres"
	"hydroatlas/internal/documents"
	"hydroatlas/internal/rag"
	"hydroatlas/internal/waterobjects"
	"hydroatlas/pkg/logger"
	"hydroatlas/pkg/ratelimiter"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("hydroatlas")
	appLogger.Info("starting HydroAtlas service")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger.Info("configuration loaded")

	db, err := postgres.GetDB(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()

	embeddingClient, err := ollamaai.NewEmbeddingClient(&cfg.Ollama, logger.New("embeddings"))
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	llmClient, err := ollamaai.NewLLMClient(&cfg.Ollama, logger.New("llm"))
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	store := rag.NewPgStore(db, logger.New("vectorstore"))
	provider := waterobjects.NewProvider(db)
	extractor := documents.NewPDFExtractor(logger.New("pdf"))
	indexer := rag.NewIndexer(store, embeddingClient, provider, extractor, logger.New("indexer"))
	engine := rag.NewEngine(store, embeddingClient, cfg.Chat.MinRelevance, logger.New("rag"))

	chatService := chat.NewService(engine, llmClient, embeddingClient, indexer, cfg.Chat, logger.New("chat"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	autoIndexer := chat.NewAutoIndexer(engine, embeddingClient, indexer, cfg.Indexing, logger.New("autoindex"))
	go autoIndexer.Run(ctx)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	limiter := ratelimiter.NewTokenBucket(cfg.Chat.RateLimitPerSecond, cfg.Chat.RateLimitBurst)
	handler := api.NewHandler(chatService, engine, indexer, logger.New("api"))
	handler.Register(router, limiter)

	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("HTTP server listening at " + cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("server shutdown failed")
	}

	appLogger.Info("server stopped")
}
