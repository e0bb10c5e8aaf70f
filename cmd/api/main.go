package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/redmonkez12/book-tracker/docs" // Swagger docs
	"github.com/redmonkez12/book-tracker/internal/auth"
	"github.com/redmonkez12/book-tracker/internal/book"
	"github.com/redmonkez12/book-tracker/internal/config"
	httpServer "github.com/redmonkez12/book-tracker/internal/http"
	"github.com/redmonkez12/book-tracker/internal/httputil"
	"github.com/redmonkez12/book-tracker/internal/logging"
	"github.com/redmonkez12/book-tracker/internal/ratelimit"
	"github.com/redmonkez12/book-tracker/internal/store/memory"
	"github.com/redmonkez12/book-tracker/internal/store/mongodb"
	"github.com/redmonkez12/book-tracker/internal/store/postgres"
	"github.com/redmonkez12/book-tracker/internal/user"
)

// @title           Book Tracker API
// @version         1.0
// @description     Personal book tracking: sign up, log in and keep a list of books with a read/to-read status.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

const connectTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:          "api",
		Short:        "Book Tracker API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create indexes (MongoDB) or tables (PostgreSQL) for the configured store",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context())
			},
		},
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

// bookStore is what the API needs from a storage backend
type bookStore interface {
	user.Store
	book.Store
}

// openStore connects to the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.StoreConfig) (bookStore, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMongo:
		s, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close(context.Background()) }, nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.New(db)
		return s, func() { _ = s.Close() }, nil
	case config.DriverMemory:
		return memory.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// newRateLimiter shares limits through Redis when REDIS_ADDR is set
func newRateLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.Redis.Addr == "" {
		return ratelimit.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	limiter := ratelimit.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	return limiter, func() { client.Close() }, nil
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
	)

	tokenService, err := auth.NewTokenService(cfg.Auth.Algorithm, cfg.Auth.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closeStore()

	// The unique email index backs duplicate detection for concurrent signups
	if s, ok := store.(*mongodb.Store); ok {
		if err := s.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}
	}

	rateLimiter, closeLimiter, err := newRateLimiter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	directory := user.NewDirectory(store, tokenService, cfg.Auth.AccessTokenDuration())
	catalog := book.NewCatalog(store)
	validator := httputil.NewValidator()

	authHandler := auth.NewHandler(directory, rateLimiter, validator)
	authMiddleware := auth.NewMiddleware(tokenService, directory)
	bookHandler := book.NewHandler(catalog, auth.OwnerID, validator)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, bookHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func migrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closeStore()

	switch s := store.(type) {
	case *mongodb.Store:
		err = s.EnsureIndexes(ctx)
	case *postgres.Store:
		err = s.Migrate(ctx)
	default:
		logger.Info("store needs no migration", "store", cfg.Store.Driver)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("migration complete", "store", cfg.Store.Driver)
	return nil
}
