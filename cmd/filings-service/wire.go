package main

import (
	"context"
	"fmt"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/internal/filings/service"
	"golang-filing-scryper/pkg/lock"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/metrics"
	"golang-filing-scryper/pkg/postgres"
	"golang-filing-scryper/pkg/redis"
	"golang-filing-scryper/pkg/telegram"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/genai"
)

// components holds everything the commands need, built once from the config.
type components struct {
	store     repository.RecordStore
	ingestion service.IngestionService
	filings   service.FilingService
	summaries service.SummaryService
	news      service.NewsService
	scheduler service.SchedulerService
	registry  *prometheus.Registry
	closers   []func()
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

func buildComponents(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*components, error) {
	c := &components{registry: prometheus.NewRegistry()}

	// Database is optional: it only backs run history and the database entity source.
	historyRepo := repository.NewNopRunHistoryRepository()
	entityRepo := repository.NewStaticTrackedEntityRepository(cfg.Entities)
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			c.closers = append(c.closers, func() { _ = sqlDB.Close() })
		}
		historyRepo = repository.NewRunHistoryRepository(db.DB)
		if cfg.Ingestion.EntitySource == "database" {
			entityRepo = repository.NewTrackedEntityRepository(db.DB)
		}
	} else if cfg.Ingestion.EntitySource == "database" {
		return nil, fmt.Errorf("ingestion.entity_source=database requires database.enabled")
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.closers = append(c.closers, func() { _ = redisClient.Close() })
		locker = lock.NewRedisLocker(redisClient.Client)
	}

	aiRepo, err := newAIRepository(ctx, cfg, appLogger)
	if err != nil {
		c.Close()
		return nil, err
	}

	notifier := telegram.NewNopNotifier()
	if cfg.Telegram.BotToken != "" {
		n, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
		notifier = n
	}

	c.store = repository.NewCSVRecordStore(cfg.Storage.DataDir, appLogger)
	feedRepo := repository.NewBSEEventFeedRepository(cfg, appLogger, nil)
	docRepo := repository.NewDocumentRepository(cfg, appLogger, nil)
	newsRepo := repository.NewGoogleNewsRepository(cfg, appLogger)

	c.ingestion = service.NewIngestionService(cfg, appLogger, feedRepo, docRepo, aiRepo, c.store, locker, metrics.NewIngestion(c.registry))
	c.filings = service.NewFilingService(c.store, appLogger)
	c.summaries = service.NewSummaryService(cfg, appLogger, docRepo, aiRepo)
	c.news = service.NewNewsService(cfg, appLogger, newsRepo)
	c.scheduler = service.NewSchedulerService(cfg, appLogger, c.ingestion, entityRepo, historyRepo, notifier)
	return c, nil
}

func newAIRepository(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (repository.AIRepository, error) {
	switch cfg.AI.Provider {
	case "openai":
		return repository.NewOpenAIRepository(cfg, appLogger), nil
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
		}
		return repository.NewGeminiAIRepository(cfg, appLogger, genAiClient), nil
	case "anthropic":
		client := anthropic.NewClient(option.WithAPIKey(cfg.Anthropic.APIKey))
		return repository.NewAnthropicAIRepository(cfg, appLogger, client), nil
	default:
		return nil, fmt.Errorf("invalid AI provider %q", cfg.AI.Provider)
	}
}
