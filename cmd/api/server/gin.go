package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	ginrouter "library-service/internal/adapter/gin/router"
	grpcmiddleware "library-service/internal/adapter/grpc/middleware"
	"library-service/pkg/logger"
)

// SetupGinServer creates the REST API server. The gin engine is wrapped in a
// CORS handler allowing allowedOrigins.
func SetupGinServer(
	handlers ginrouter.Handlers,
	rateLimiter *grpcmiddleware.RateLimiter,
	checks map[string]ginrouter.HealthCheck,
	allowedOrigins []string,
	ginAddr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handlers, rateLimiter, checks, l)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", logger.RequestIDHeader},
		ExposedHeaders: []string{logger.RequestIDHeader},
		MaxAge:         600,
	})

	l.Info("Gin REST API configured",
		zap.String("address", ginAddr),
		zap.Strings("cors_allowed_origins", allowedOrigins),
	)

	return &http.Server{
		Addr:              ginAddr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
