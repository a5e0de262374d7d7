package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodlog/backend/config"
	httpDelivery "github.com/foodlog/backend/internal/delivery/http"
	"github.com/foodlog/backend/internal/domain"
	"github.com/foodlog/backend/internal/infrastructure/aiparser"
	"github.com/foodlog/backend/internal/infrastructure/cache"
	"github.com/foodlog/backend/internal/logger"
	"github.com/foodlog/backend/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment, cfg.AI.Debug); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting FoodLog Backend v1.0.0",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL))

	// Initialize infrastructure dependencies
	responseCache, closeCache := newCache(cfg.Cache)
	defer closeCache()

	aiClient := aiparser.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL)
	aiClient.SetTimeout(cfg.AI.Timeout)
	aiClient.SetRateLimit(cfg.RateLimit.AI)

	// Enable debug mode in development environment
	if cfg.AI.Debug || cfg.Server.Environment == "development" {
		aiClient.SetDebug(true)
		logger.Debug("AI client debug mode enabled")
	}

	if cfg.AI.APIKey == "" {
		logger.Info("AI service configured without API key", zap.String("base_url", cfg.AI.BaseURL))
	} else {
		logger.Info("AI service configured", zap.String("base_url", cfg.AI.BaseURL))
	}

	// Initialize usecase layer
	foodLogService := usecase.NewFoodLogService(
		aiClient,
		responseCache,
		usecase.FoodLogServiceConfig{
			CacheTTL: cfg.Cache.TTL,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(foodLogService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", srv.Addr), zap.Error(err))
	}

	if err := serve(ctx, srv, ln, shutdownTimeout); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}

// serve runs srv on ln until ctx is done, then shuts it down.
// Request contexts are cancelled first so open event streams end.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		cancelRequests()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newCache builds the configured response cache. A nil cache disables caching.
func newCache(cfg config.CacheConfig) (domain.CacheRepository, func()) {
	switch cfg.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to configure Redis cache", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis not reachable, cache reads will miss until it is", zap.Error(err))
		}
		return redisCache, func() { _ = redisCache.Close() }
	case "none":
		return nil, func() {}
	default:
		memoryCache := cache.NewMemoryCache()
		return memoryCache, func() { _ = memoryCache.Close() }
	}
}
