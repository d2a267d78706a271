package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/estatecrawler/config"
	"sjsage522/estatecrawler/helpers"
	"sjsage522/estatecrawler/internal"
	"sjsage522/estatecrawler/internal/crawler"
	"sjsage522/estatecrawler/logger"
	crawlerrors "sjsage522/estatecrawler/pkg/errors"
	"sjsage522/estatecrawler/services/cache"
	"sjsage522/estatecrawler/services/publisher"
	"sjsage522/estatecrawler/services/worker"
	"sjsage522/estatecrawler/storage"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("mode", cfg.RunMode).
		Str("dataset", cfg.DatasetPath).
		Msg("Starting application")

	// Cancel the run on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := storage.NewCSVStore(cfg.DatasetPath)

	if cfg.RunMode == config.ModeCleanup {
		w := worker.NewWorker(nil, store, internal.Dependencies{}, nil)
		report, err := w.Cleanup()
		if err != nil {
			log.Fatal().Err(err).Msg("Cleanup failed")
		}
		log.Info().
			Int("before", report.Before).
			Int("after", report.After).
			Int("removed", len(report.Duplicates)).
			Msg("Cleanup finished")
		return
	}

	sites, err := config.LoadSites(cfg.SitesFile, cfg.TargetArea, cfg.Sites)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SitesFile).Msg("Failed to load sites")
	}

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	helpers.SetRequestTimeout(cfg.RequestTimeout)
	fetcher := crawler.NewHTTPFetcher(services.Cache, cfg.BlockTime)
	queue := crawler.NewTaskQueue(cfg.RequestDelay, crawler.RetryPolicy{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
	})
	defer queue.Close()

	observer := crawler.LogObserver{}
	crawlers := crawler.CreateCrawlers(sites, fetcher, queue, crawler.Options{
		MaxPages:        cfg.MaxPages,
		SkipFailedPages: cfg.SkipFailedPages,
		Observer:        observer,
	})
	if len(crawlers) == 0 {
		log.Fatal().Msg("No crawlers were created")
	}

	w := worker.NewWorker(crawlers, store, services.Dependencies, observer)
	if err := w.Run(ctx); err != nil {
		if crawlerrors.IsType(err, crawlerrors.ErrorTypePersistence) {
			services.Cleanup()
			log.Fatal().Err(err).Msg("Failed to update dataset")
		}
		log.Warn().Err(err).Msg("Run finished with site errors")
		return
	}

	logger.LogInfo("main", "Run finished, dataset at %s", store.Path())
}

// Services holds all the initialized services
type Services struct {
	internal.Dependencies
	postgres *storage.PostgresWriter
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
		s.Publisher = nil
	}
	if s.postgres != nil {
		s.postgres.Close()
		s.postgres = nil
	}
}

// initializeServices connects the optional services. A service that is not
// configured or not reachable stays disabled.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := cacheService.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, rate limit flags disabled: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = cacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(ctx, publisher.Options{
			Addr:            cfg.RedisAddr,
			DB:              cfg.RedisDB,
			StreamPrefix:    cfg.RedisStream,
			StreamCount:     cfg.RedisStreamCount,
			StreamMaxLength: cfg.RedisStreamMaxLength,
		})
		if err := redisPublisher.Ping(); err != nil {
			logger.ForPublisher().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, publishing disabled")
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	if cfg.PostgresDSN != "" {
		writer, err := storage.NewPostgresWriter(ctx, cfg.PostgresDSN)
		if err == nil {
			err = writer.EnsureSchema(ctx)
			if err != nil {
				writer.Close()
			}
		}
		if err != nil {
			logger.ForStore().Warn().Err(err).Msg("Postgres unavailable, mirror disabled")
		} else {
			services.postgres = writer
			services.Sink = writer
			logger.Info("Connected to Postgres")
		}
	}

	return services
}
