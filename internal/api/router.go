package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-Id"
	requestMetaKey  = "request_meta"

	defaultMaxBodyBytes = 5 << 20
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestMetaMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	if cfg.RateLimit.RPS > 0 {
		router.Use(newRateLimiter(cfg.RateLimit).middleware())
	}

	// Handlers
	commentHandler := NewCommentHandler(services, cfg, log)
	webhookHandler := NewWebhookHandler(services, cfg, log)
	subscriptionHandler := NewSubscriptionHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck(services))

	comments := router.Group("/comments")
	{
		comments.POST("", commentHandler.CreateComment)
		comments.GET("", commentHandler.ListComments)
		comments.GET("/:id", commentHandler.GetComment)
	}

	router.POST("/sendgrid", webhookHandler.ReceiveEvents)
	router.POST("/subscriptions", subscriptionHandler.Subscribe)

	registerProxyRoutes(router, cfg.Proxy, log)

	return router
}

func bodyLimit(cfg *config.Config) int64 {
	if cfg.Server.MaxBodyBytes > 0 {
		return cfg.Server.MaxBodyBytes
	}
	return defaultMaxBodyBytes
}

// healthCheck reports backend reachability; a degraded backend yields 503
func healthCheck(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := services.Health.Check(c.Request.Context())

		status := http.StatusOK
		if report.Status != models.HealthOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":     report.Status,
			"components": report.Components,
			"timestamp":  time.Now().Format(time.RFC3339),
			"service":    "lambdaless-api",
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// requestMetaMiddleware stamps every request with a fresh id and its
// arrival time. The id doubles as the comment id, so it is never taken
// from the client.
func requestMetaMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := models.RequestMeta{
			RequestID:  uuid.New().String(),
			ReceivedAt: time.Now(),
		}
		c.Set(requestMetaKey, meta)
		c.Header(requestIDHeader, meta.RequestID)
		c.Next()
	}
}

// requestMeta returns the metadata assigned by requestMetaMiddleware
func requestMeta(c *gin.Context) models.RequestMeta {
	if v, ok := c.Get(requestMetaKey); ok {
		if meta, ok := v.(models.RequestMeta); ok {
			return meta
		}
	}
	return models.RequestMeta{RequestID: uuid.New().String(), ReceivedAt: time.Now()}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", requestMeta(c).RequestID).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
