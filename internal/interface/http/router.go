package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skincare-api/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		recoveryMiddleware(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/recommendations", handler.Recommend)

	api := router.Group("/api/v1")
	{
		api.GET("/recommendations", handler.Recommend)
		api.GET("/recommendations/trending", handler.Trending)
		api.GET("/products", handler.ListProducts)
		api.GET("/products/:id", handler.GetProduct)
		api.POST("/analysis/face", handler.DetectFace)
		api.POST("/analysis/skin", handler.AnalyzeSkin)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
