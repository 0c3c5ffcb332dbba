package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brandpulse/brandpulse/internal/api"
	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/llm"
	"github.com/brandpulse/brandpulse/internal/observability"
	"github.com/brandpulse/brandpulse/internal/repository/postgres"
	rediscache "github.com/brandpulse/brandpulse/internal/repository/redis"
	"github.com/brandpulse/brandpulse/internal/services/competitor"
	"github.com/brandpulse/brandpulse/internal/services/market"
	"github.com/brandpulse/brandpulse/internal/services/social"
	"github.com/brandpulse/brandpulse/internal/services/strategy"
	"github.com/brandpulse/brandpulse/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.App.Environment, cfg.GetLogLevel())
	defer logger.Sync()

	logger.Info("Starting BrandPulse API",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// Connect to PostgreSQL
	db, err := postgres.New(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
	)

	// Connect to Redis (optional)
	var cache *rediscache.Cache
	cache, err = rediscache.New(cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	// Object storage for uploaded briefs (optional)
	var briefs *storage.MinIOClient
	if cfg.Storage.Enabled {
		briefs, err = storage.NewMinIOClient(cfg.Storage)
		if err != nil {
			logger.Warn("Failed to connect to object storage, brief archiving disabled", zap.Error(err))
			briefs = nil
		} else if err := briefs.EnsureBucket(context.Background()); err != nil {
			logger.Warn("Failed to ensure storage bucket, brief archiving disabled", zap.Error(err))
			briefs = nil
		} else {
			logger.Info("Connected to object storage",
				zap.String("endpoint", cfg.Storage.Endpoint),
				zap.String("bucket", cfg.Storage.Bucket),
			)
		}
	}

	metrics := observability.InitMetrics(cfg.App.Name)

	// Sample pool and runtime gauges for the lifetime of the process
	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()
	go metrics.StartSystemCollector(collectorCtx, db.DB.DB, 15*time.Second)

	// LLM extraction client (optional, parser falls back to keyword rules)
	var completer strategy.Completer
	if cfg.LLM.Enabled() {
		mistral, err := llm.NewMistralClient(llm.Config{
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			Model:        cfg.LLM.Model,
			MaxTokens:    cfg.LLM.MaxTokens,
			Timeout:      cfg.LLM.Timeout,
			RateLimitRPM: cfg.LLM.RateLimitRPM,
			MaxRetries:   cfg.LLM.MaxRetries,
			Cache: llm.CacheConfig{
				RedisEnabled:  cfg.LLM.EnableCaching && cache != nil,
				RedisTTL:      cfg.LLM.CacheTTL,
				MemoryEnabled: cfg.LLM.EnableCaching,
				MemoryMaxSize: cfg.LLM.CacheSize,
				MemoryTTL:     cfg.LLM.CacheTTL,
			},
		}, redisClient(cache), logger)
		if err != nil {
			logger.Warn("Failed to create LLM client, using keyword extraction", zap.Error(err))
		} else {
			completer = mistral
			logger.Info("LLM extraction enabled", zap.String("model", cfg.LLM.Model))
		}
	} else {
		logger.Info("LLM extraction disabled, using keyword extraction")
	}

	// Competitor page fetcher (optional, service mocks when nil)
	var fetcher competitor.Fetcher
	if cfg.Scraper.Enabled {
		if cfg.Scraper.UseBrowser {
			browser, err := competitor.NewBrowserFetcher(cfg.Scraper.UserAgent, cfg.Scraper.BrowserTimeout)
			if err != nil {
				logger.Warn("Failed to start browser fetcher, falling back to HTTP", zap.Error(err))
			} else {
				defer browser.Close()
				fetcher = browser
			}
		}
		if fetcher == nil {
			httpFetcher, err := competitor.NewHTTPFetcher(cfg.Scraper)
			if err != nil {
				logger.Warn("Failed to create HTTP fetcher, scraping disabled", zap.Error(err))
			} else {
				fetcher = httpFetcher
			}
		}
	}

	// Initialize repositories and services
	repos := postgres.NewRepositories(db.DB)
	parser := strategy.NewParser(completer, logger, metrics)
	competitorSvc := competitor.NewService(fetcher, cfg.Scraper, logger, metrics)
	marketSvc := market.NewService(cfg.Search, logger, metrics)
	instagramSvc := social.NewInstagramService(cfg.Instagram, logger, metrics)

	// Create router
	rateLimit := 0
	if cfg.RateLimits.Enabled {
		rateLimit = cfg.RateLimits.RequestsPerMin
	}
	router := api.NewRouter(api.RouterConfig{
		Repos:      repos,
		Cache:      cache,
		Competitor: competitorSvc,
		Parser:     parser,
		Market:     marketSvc,
		Instagram:  instagramSvc,
		Briefs:     briefs,
		Metrics:    metrics,
		Logger:     logger,
		EnableCORS: cfg.Security.CORSEnabled,
		RateLimit:  rateLimit,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", zap.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("Server error", zap.Error(err))

	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
			server.Close()
		}

		logger.Info("Server stopped gracefully")
	}
}

// redisClient unwraps the raw client, tolerating a nil cache
func redisClient(cache *rediscache.Cache) *redis.Client {
	if cache == nil {
		return nil
	}
	return cache.Client()
}

// initLogger creates a configured zap logger
func initLogger(env, level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		// Fall back to basic logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
