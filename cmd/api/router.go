package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/openapi"
	"bookshelf-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(),
	)
	if c.Config.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(c.Config.RateLimit.RPS, c.Config.RateLimit.Burst).Middleware())
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/docs/openapi.json", openapi.Handler(c.Config.App.Version))

		write := writeGuard(c)

		setupAuthorRoutes(v1, c, write)
		setupBookRoutes(v1, c, write)
		setupLinkRoutes(v1, c, write)
	}

	return router
}

// writeGuard is the middleware chain placed in front of mutating routes.
func writeGuard(c *container.Container) []gin.HandlerFunc {
	if !c.Config.JWT.AuthEnabled {
		return nil
	}
	return []gin.HandlerFunc{middleware.AuthMiddleware(c.JWTManager)}
}

func chain(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, guard...), h)
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(v1 *gin.RouterGroup, c *container.Container, write []gin.HandlerFunc) {
	authors := v1.Group("/authors")
	{
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/:id", c.AuthorHandler.GetByID)
		authors.POST("", chain(write, c.AuthorHandler.Create)...)
		authors.PATCH("/:id", chain(write, c.AuthorHandler.Update)...)
		authors.DELETE("/:id", chain(write, c.AuthorHandler.Delete)...)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container, write []gin.HandlerFunc) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/export", c.BookHandler.ExportBooks)
		books.GET("/:id", c.BookHandler.GetBookDetail)
		books.POST("", chain(write, c.BookHandler.CreateBook)...)
		books.PATCH("/:id", chain(write, c.BookHandler.UpdateBook)...)
		books.DELETE("/:id", chain(write, c.BookHandler.DeleteBook)...)
	}
}

// ========================================
// LINK AUDIT ROUTES
// ========================================
func setupLinkRoutes(v1 *gin.RouterGroup, c *container.Container, write []gin.HandlerFunc) {
	links := v1.Group("/links")
	{
		links.GET("/audit", c.AuditHandler.GetLastReport)
		links.POST("/audit", chain(write, c.AuditHandler.TriggerAudit)...)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := appCtx.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		cacheStatus := "ok"
		if !appCtx.Config.Redis.Enabled {
			cacheStatus = "disabled"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			cacheStatus = fmt.Sprintf("error: %v", err)
		}

		health["services"] = gin.H{
			"store":    appCtx.Config.Store.Driver,
			"database": dbStatus,
			"cache":    cacheStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
