package service

import (
	"context"
	"fmt"
	"strings"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// NewsService returns recent headlines about a ticker.
type NewsService interface {
	LatestNews(ctx context.Context, ticker string, limit int) ([]dto.NewsItem, error)
}

type newsService struct {
	cfg           *config.Config
	logger        *logger.Logger
	newsRepo      repository.NewsRepository
	inmemoryCache *cache.Cache
}

// NewNewsService creates a new NewsService. Results are cached for news.cache_ttl.
func NewNewsService(cfg *config.Config, log *logger.Logger, newsRepo repository.NewsRepository) NewsService {
	return &newsService{
		cfg:           cfg,
		logger:        log,
		newsRepo:      newsRepo,
		inmemoryCache: cache.New(cfg.News.CacheTTL, 2*cfg.News.CacheTTL),
	}
}

func (s *newsService) LatestNews(ctx context.Context, ticker string, limit int) ([]dto.NewsItem, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if limit <= 0 {
		limit = s.cfg.News.Limit
	}

	key := fmt.Sprintf("news:%s:%d", strings.ToUpper(ticker), limit)
	if cached, ok := s.inmemoryCache.Get(key); ok {
		return cached.([]dto.NewsItem), nil
	}

	items, err := s.newsRepo.Search(ctx, ticker, limit)
	if err != nil {
		s.logger.Error("Failed to fetch news", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return nil, err
	}

	s.inmemoryCache.Set(key, items, cache.DefaultExpiration)
	return items, nil
}
