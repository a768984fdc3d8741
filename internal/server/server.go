package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"agenda/internal/config"
	"agenda/internal/handler"
	"agenda/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	router   *gin.Engine
	mongo    *mongo.Client
	redis    *redis.Client
	memLimit *ratelimit.MemoryLimiter
}

// New creates a new server instance. An unreachable MongoDB does not fail
// startup; only an unusable configuration does.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	mongoClient, err := Connect(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	repos := InitRepositories(cfg, db)
	services := InitServices(cfg, log, repos)

	checks := map[string]handler.Pinger{
		"mongo": handler.PingFunc(func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		}),
	}

	memLimit := ratelimit.NewMemoryLimiter(cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow)
	var limiter ratelimit.Limiter = memLimit
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			memLimit.Stop()
			_ = mongoClient.Disconnect(ctx)
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		shared := ratelimit.NewRedisLimiter(redisClient, "agenda:login:", cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow)
		limiter = ratelimit.NewFallback(shared, memLimit, func(err error) {
			log.Warn("redis rate limiter unavailable; using in-memory limiter", "error", err)
		})
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	handlers := InitHandlers(cfg, log, services, checks)

	initCtx, cancel := context.WithTimeout(ctx, 2*cfg.Mongo.Timeout)
	defer cancel()
	PopulateInitialData(initCtx, cfg, log, repos, services)

	router := NewRouter(cfg, log, handlers, services, limiter)

	return &Server{
		cfg:      cfg,
		log:      log,
		router:   router,
		mongo:    mongoClient,
		redis:    redisClient,
		memLimit: memLimit,
	}, nil
}

// Connect creates the MongoDB client and checks connectivity. A failed ping
// is logged, not returned: the driver keeps reconnecting in the background.
func Connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetServerSelectionTimeout(cfg.Mongo.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Warn("MongoDB not reachable at startup; continuing", "error", err)
	} else {
		log.Info("connected to MongoDB", "database", cfg.Mongo.Database)
	}
	return client, nil
}

// Handler returns the root HTTP handler with tracing applied.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "agenda")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the store connections
func (s *Server) Close() error {
	s.memLimit.Stop()
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errs = append(errs, s.mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
