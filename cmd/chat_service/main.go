package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"

	"FinSight/internal/chat"
	"FinSight/internal/chat/api"
	"FinSight/internal/chat/session"
	"FinSight/internal/config"
	"FinSight/internal/database/mongo"
	"FinSight/internal/database/mysql"
	"FinSight/internal/database/redis"
	"FinSight/internal/document"
	"FinSight/internal/llm"
	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("internal/config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Logger.Level)
	serviceLogger := logger.New("ChatService", "", "")

	// Connect to MySQL and migrate the document schema
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to connect to MySQL")
	}
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to migrate document schema")
	}

	// Session store: MongoDB when configured, in-memory otherwise
	retention := parseDurationOr(cfg.Chat.SessionRetention, 720*time.Hour)
	var sessionStore session.Store
	if cfg.Databases.MongoDB.Address != "" {
		mongoClient, err := mongo.GetClient(&cfg.Databases.MongoDB)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to connect to MongoDB")
		}
		mongoStore, err := session.NewMongoStore(
			context.Background(),
			mongoClient.Database(cfg.Databases.MongoDB.Database),
			cfg.Databases.MongoDB.Collection,
			retention,
		)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to initialize session store")
		}
		sessionStore = mongoStore
	} else {
		serviceLogger.Warn("No MongoDB configured, sessions are held in memory and lost on restart")
		sessionStore = session.NewMemoryStore()
	}

	// Redis backs the rate limiter; without it the limiter stays off
	var rdb *goredis.Client
	if cfg.RateLimiter.Enabled {
		rdb, err = redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to connect to Redis, rate limiting disabled")
			rdb = nil
		}
	}

	// Conversational capability
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create LLM client")
	}
	capability := chat.NewLLMCapability(llmClient)

	// Assemble the services
	documentService := document.NewService(document.NewStore(db), cfg.UploadDir, serviceLogger)
	sessionManager := session.NewManager(sessionStore, serviceLogger)
	chatService, err := chat.NewService(cfg.Chat, sessionManager, documentService, capability, cfg.LLM.Provider, serviceLogger)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create chat service")
	}

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	apiHandler := api.NewAPI(chatService, documentService, serviceLogger)
	router := api.NewRouter(apiHandler, serviceLogger, rdb, cfg.RateLimiter.Enabled, cfg.RateLimiter.Limit, parseDurationOr(cfg.RateLimiter.Window, time.Minute))

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	// Start server
	go func() {
		serviceLogger.Info("Starting HTTP server on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	serviceLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Server forced to shutdown")
	}

	if err := mysql.Close(); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing MySQL connection")
	}
	if cfg.Databases.MongoDB.Address != "" {
		if err := mongo.Close(context.Background()); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error disconnecting from MongoDB")
		}
	}
	if rdb != nil {
		if err := redis.Close(); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Redis connection")
		}
	}

	serviceLogger.Info("Server gracefully stopped")
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
