package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-service/cmd/api/infrastructure"
	"library-service/internal/adapter/db/mongodb"
	"library-service/internal/adapter/db/postgres"
	ginhandler "library-service/internal/adapter/gin/handler"
	ginrouter "library-service/internal/adapter/gin/router"
	"library-service/internal/adapter/grpc/middleware"
	"library-service/internal/adapter/repository/cached"
	"library-service/internal/config"
	"library-service/internal/usecase/catalog"
	"library-service/internal/usecase/loan"
	"library-service/internal/usecase/user"
	redisclient "library-service/pkg/redis"
)

// Check is a named dependency probe shared by the HTTP and gRPC health
// endpoints.
type Check func(ctx context.Context) error

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB          *gorm.DB
	Mongo       *mongo.Client
	RedisClient *redisclient.Client
	publisher   io.Closer

	UserUC    user.Usecase
	CatalogUC catalog.Usecase
	LoanUC    loan.Usecase

	RateLimiter *middleware.RateLimiter
	Handlers    ginrouter.Handlers
	Checks      map[string]Check
}

type stores struct {
	books catalog.Repository
	users user.Repository
	loans loan.Repository
	tx    loan.Transactor
}

// NewContainer creates and initializes all application dependencies. On
// failure every resource opened so far is closed.
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (c *Container, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c = &Container{
		Config: cfg,
		Logger: l,
		Checks: map[string]Check{},
	}
	defer func() {
		if err != nil {
			if cerr := c.Close(); cerr != nil {
				l.Warn("failed to release resources after init error", zap.Error(cerr))
			}
			c = nil
		}
	}()

	s, err := c.initStores(ctx)
	if err != nil {
		return nil, err
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	if rdb != nil {
		c.RedisClient = rdb
		c.Checks["redis"] = rdb.Check
		c.RateLimiter = middleware.NewRateLimiter(rdb.Client, middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		}, l)
	}

	userCache := infrastructure.NewUserCache(cfg, rdb, l)
	users := cached.NewUserRepository(s.users, userCache, l)

	publisher, closer, err := infrastructure.NewEventPublisher(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	c.publisher = closer

	c.UserUC = user.New(users, l)
	c.CatalogUC = catalog.New(s.books, l)
	c.LoanUC = loan.New(s.loans, s.books, users, s.tx, l, loan.WithPublisher(publisher))

	c.Handlers = ginrouter.Handlers{
		Books: ginhandler.NewBookHandler(c.CatalogUC, l),
		Users: ginhandler.NewUserHandler(c.UserUC, l),
		Loans: ginhandler.NewLoanHandler(c.LoanUC, l),
	}

	l.Info("container initialized",
		zap.String("db_driver", cfg.DB.Driver),
		zap.Bool("redis", rdb != nil),
		zap.Bool("rabbitmq", cfg.RabbitMQ.Enabled),
	)
	return c, nil
}

func (c *Container) initStores(ctx context.Context) (*stores, error) {
	cfg, l := c.Config, c.Logger

	if cfg.DB.Driver == config.DriverMongo {
		client, db, err := infrastructure.NewMongo(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		c.Mongo = client
		c.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

		return &stores{
			books: mongodb.NewBookRepo(db, l),
			users: mongodb.NewUserRepo(db, l),
			loans: mongodb.NewLoanRepo(db, l),
			tx:    mongodb.NewTransactor(client, l),
		}, nil
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db
	c.Checks["database"] = func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	return &stores{
		books: postgres.NewBookRepoPG(db, l),
		users: postgres.NewUserRepoPG(db, l),
		loans: postgres.NewLoanRepoPG(db, l),
		tx:    postgres.NewTransactor(db, l),
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect mongo: %w", err))
		}
	}

	return errors.Join(errs...)
}
