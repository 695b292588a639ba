// Package server は gin ルーターの組み立てを行います。
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusconnect/backend/internal/auth"
	"github.com/campusconnect/backend/internal/config"
	"github.com/campusconnect/backend/internal/events"
	"github.com/campusconnect/backend/internal/httperr"
	"github.com/campusconnect/backend/internal/metrics"
	"github.com/campusconnect/backend/internal/middleware"
	"github.com/campusconnect/backend/internal/seed"
	"github.com/campusconnect/backend/internal/session"
	"github.com/campusconnect/backend/internal/store"
)

// Banner は GET / で返す文字列です。
const Banner = "CampusConnect backend is running!"

// New はミドルウェアとルートを設定済みの gin.Engine を返します。
func New(cfg *config.Config, st store.Store, sessionStore sessions.Store, logger zerolog.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		httperr.Recovery(logger),
		metrics.Middleware(),
		cors.New(corsConfig(cfg)),
		session.Middleware(sessionStore),
		httperr.Boundary(logger),
	)

	setupRoutes(router, cfg, st, logger)
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"X-Request-ID",
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	return corsConfig
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func setupRoutes(router *gin.Engine, cfg *config.Config, st store.Store, logger zerolog.Logger) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	})
	router.GET("/health", handleHealth)
	router.GET("/metrics", metrics.Handler())

	authManager := auth.NewManager(st, cfg.BcryptCost, logger)
	eventHandler := events.NewHandler(st, logger)

	api := router.Group("/api")
	{
		api.POST("/signup", authManager.Signup)
		api.POST("/login", authManager.Login)
		api.POST("/logout", authManager.Logout)
		api.GET("/me", authManager.Me)

		api.GET("/events", eventHandler.List)
		api.POST("/events", eventHandler.Create)
		api.POST("/events/:id/register", eventHandler.Register)

		if cfg.SeedEnabled {
			api.GET("/seed", seed.NewSeeder(st, cfg.BcryptCost).Handler)
		}
	}
}
