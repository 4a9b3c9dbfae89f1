package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-service/internal/adapter/gin/handler"
	"library-service/internal/adapter/gin/middleware"
	grpcmiddleware "library-service/internal/adapter/grpc/middleware"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers groups the HTTP handlers mounted under /v1.
type Handlers struct {
	Books *handler.BookHandler
	Users *handler.UserHandler
	Loans *handler.LoanHandler
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	h Handlers,
	rateLimiter *grpcmiddleware.RateLimiter,
	checks map[string]HealthCheck,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	router.GET("/health", health(checks))

	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimiter(rateLimiter, log))
	{
		books := v1.Group("/books")
		{
			books.POST("", h.Books.CreateBook)
			books.GET("", h.Books.ListBooks)
			books.GET("/:id", h.Books.GetBook)
			books.PUT("/:id", h.Books.UpdateBook)
			books.DELETE("/:id", h.Books.DeleteBook)
		}

		users := v1.Group("/users")
		{
			users.POST("", h.Users.RegisterUser)
			users.GET("/email/:email", h.Users.GetUserByEmail)
			users.GET("/roll/:roll", h.Users.GetUserByRoll)
		}

		loans := v1.Group("/loans")
		{
			loans.POST("", h.Loans.Borrow)
			loans.GET("", h.Loans.ListLoans)
			loans.PATCH("/:id/return", h.Loans.ReturnLoan)
		}
	}

	return router
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		status := "healthy"
		if code != http.StatusOK {
			status = "unhealthy"
		}
		c.JSON(code, gin.H{
			"status":       status,
			"service":      "library-service",
			"dependencies": deps,
		})
	}
}
