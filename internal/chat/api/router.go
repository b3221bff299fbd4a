package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"FinSight/pkg/logger"
)

// NewRouter builds the gin engine with all chat service routes. rdb may be
// nil, in which case rate limiting is disabled regardless of config.
func NewRouter(api *API, log *logger.Logger, rdb *redis.Client, rateLimitEnabled bool, rateLimit int, rateWindow time.Duration) *gin.Engine {
	router := gin.Default()

	router.Use(RequestLogMiddleware(log))
	if rateLimitEnabled && rdb != nil {
		router.Use(RateLimitMiddleware(rdb, rateLimit, rateWindow))
	}

	v1 := router.Group("/api/v1")
	{
		chatRoutes := v1.Group("/chat")
		{
			chatRoutes.POST("/document", api.ChatWithDocumentHandler)
			chatRoutes.POST("/general", api.GeneralChatHandler)
			chatRoutes.GET("/history/:session_id", api.GetChatHistoryHandler)
		}

		documents := v1.Group("/documents")
		{
			documents.POST("/upload", api.UploadDocumentHandler)
			documents.POST("/:id/process", api.ProcessDocumentHandler)
			documents.GET("/:id", api.GetDocumentHandler)
		}
	}

	return router
}
