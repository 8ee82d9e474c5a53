package config

import (
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/pkg/config"
)

// Storage holds the location of the per-ticker CSV stores.
type Storage struct {
	DataDir string `mapstructure:"data_dir" validate:"required"`
}

// Exchange holds the BSE endpoints used by the ingestion pipeline.
type Exchange struct {
	AnnouncementURL    string        `mapstructure:"announcement_url" validate:"required,url"`
	AttachmentBaseURL  string        `mapstructure:"attachment_base_url" validate:"required,url"`
	AttachmentFolders  []string      `mapstructure:"attachment_folders" validate:"required,min=1"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	MaxPages           int           `mapstructure:"max_pages"`
	MaxDocumentSizeMiB int           `mapstructure:"max_document_size_mib"`
}

// Ingestion holds the pipeline tuning knobs.
type Ingestion struct {
	LookbackDays          int           `mapstructure:"lookback_days" validate:"gte=0"`
	MaxConcurrentEntities int           `mapstructure:"max_concurrent_entities" validate:"gte=0"`
	LockTTL               time.Duration `mapstructure:"lock_ttl"`
	EntitySource          string        `mapstructure:"entity_source" validate:"omitempty,oneof=config database"`
}

// Scheduler holds the periodic refresh configuration.
type Scheduler struct {
	Enabled bool          `mapstructure:"enabled"`
	Cron    string        `mapstructure:"cron" validate:"required_if=Enabled true"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider      string `mapstructure:"provider" validate:"required,oneof=openai gemini anthropic"`
	MaxInputChars int    `mapstructure:"max_input_chars" validate:"gte=0"`
}

// OpenAI holds the configuration for the OpenAI chat completions API.
type OpenAI struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Anthropic holds the configuration for the Anthropic Messages API.
type Anthropic struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxTokens           int64  `mapstructure:"max_tokens"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// News holds the configuration for the Google News RSS lookup.
type News struct {
	FeedURL  string        `mapstructure:"feed_url"`
	Sites    []string      `mapstructure:"sites"`
	Limit    int           `mapstructure:"limit"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the filings service.
type Config struct {
	App       config.App             `mapstructure:"app"`
	Logger    config.Logger          `mapstructure:"logger"`
	Database  config.Database        `mapstructure:"database"`
	Redis     config.Redis           `mapstructure:"redis"`
	API       config.API             `mapstructure:"api"`
	Storage   Storage                `mapstructure:"storage"`
	Exchange  Exchange               `mapstructure:"exchange"`
	Ingestion Ingestion              `mapstructure:"ingestion"`
	Scheduler Scheduler              `mapstructure:"scheduler"`
	AI        AI                     `mapstructure:"ai"`
	OpenAI    OpenAI                 `mapstructure:"openai"`
	Gemini    Gemini                 `mapstructure:"gemini"`
	Anthropic Anthropic              `mapstructure:"anthropic"`
	News      News                   `mapstructure:"news"`
	Telegram  Telegram               `mapstructure:"telegram"`
	Entities  []entity.TrackedEntity `mapstructure:"entities" validate:"dive"`
}

// Load loads the filings configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Exchange.RequestTimeout == 0 {
		c.Exchange.RequestTimeout = 10 * time.Second
	}
	if c.Exchange.MaxPages == 0 {
		c.Exchange.MaxPages = 50
	}
	if c.Exchange.MaxDocumentSizeMiB == 0 {
		c.Exchange.MaxDocumentSizeMiB = 25
	}
	if c.Ingestion.LookbackDays == 0 {
		c.Ingestion.LookbackDays = 10
	}
	if c.Ingestion.MaxConcurrentEntities == 0 {
		c.Ingestion.MaxConcurrentEntities = 1
	}
	if c.Ingestion.LockTTL == 0 {
		c.Ingestion.LockTTL = 2 * time.Hour
	}
	if c.Ingestion.EntitySource == "" {
		c.Ingestion.EntitySource = "config"
	}
	if c.Scheduler.Timeout == 0 {
		c.Scheduler.Timeout = time.Hour
	}
	if c.AI.MaxInputChars == 0 {
		c.AI.MaxInputChars = 4000
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4.1-nano"
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = 90 * time.Second
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = 1024
	}
	if c.News.FeedURL == "" {
		c.News.FeedURL = "https://news.google.com/rss/search"
	}
	if len(c.News.Sites) == 0 {
		c.News.Sites = []string{"moneycontrol.com", "economictimes.indiatimes.com"}
	}
	if c.News.Limit == 0 {
		c.News.Limit = 5
	}
	if c.News.CacheTTL == 0 {
		c.News.CacheTTL = 5 * time.Minute
	}
}
