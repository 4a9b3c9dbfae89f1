package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"library-service/cmd/api/di"
	ginrouter "library-service/internal/adapter/gin/router"
	grpcadapter "library-service/internal/adapter/grpc"
	"library-service/internal/config"
)

const healthProbeInterval = 10 * time.Second

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Gin    *http.Server
	Health *grpcadapter.HealthReporter
}

// New builds the gRPC and REST servers from the container.
func New(c *di.Container) *Server {
	ginChecks := make(map[string]ginrouter.HealthCheck, len(c.Checks))
	grpcChecks := make(map[string]grpcadapter.Check, len(c.Checks))
	for name, check := range c.Checks {
		ginChecks[name] = ginrouter.HealthCheck(check)
		grpcChecks[name] = grpcadapter.Check(check)
	}

	health := grpcadapter.NewHealthReporter(grpcChecks, healthProbeInterval, c.Logger)
	cfg := c.Config

	return &Server{
		Config: cfg,
		Logger: c.Logger,
		Health: health,
		GRPC:   SetupGRPC(health, c.RateLimiter, cfg.Env, c.Logger),
		Gin: SetupGinServer(
			c.Handlers,
			c.RateLimiter,
			ginChecks,
			cfg.App.CORSAllowedOrigins,
			httpAddress(cfg),
			c.Logger,
		),
	}
}

// Start serves gRPC and REST until ctx is done or either server fails, then
// shuts both down.
func (s *Server) Start(ctx context.Context) error {
	grpcLis, err := listen(ctx, grpcAddress(s.Config))
	if err != nil {
		return fmt.Errorf("failed to start gRPC server: %w", err)
	}
	ginLis, err := listen(ctx, s.Gin.Addr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to start Gin server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("Gin REST API running", zap.String("address", ginLis.Addr().String()))
		if err := s.Gin.Serve(ginLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Health.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})

	return g.Wait()
}

// Shutdown stops both servers within the configured timeout. gRPC is stopped
// hard if graceful stop does not finish in time.
func (s *Server) Shutdown() error {
	timeout := s.Config.App.ShutdownTimeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.Logger.Info("starting graceful shutdown", zap.Duration("timeout", timeout))
	s.Health.Shutdown()

	var errs []error
	if err := s.Gin.Shutdown(ctx); err != nil {
		s.Logger.Error("failed to shutdown Gin server", zap.Error(err))
		errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
	}

	stopped := make(chan struct{})
	go func() {
		s.GRPC.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.Logger.Warn("gRPC graceful stop timed out, forcing stop")
		s.GRPC.Stop()
	}

	return errors.Join(errs...)
}

func listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return lis, nil
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
