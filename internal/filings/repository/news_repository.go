package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/pkg/logger"

	"github.com/mmcdole/gofeed"
)

// NewsRepository searches a news RSS feed for headlines about a ticker.
type NewsRepository interface {
	Search(ctx context.Context, ticker string, limit int) ([]dto.NewsItem, error)
}

type googleNewsRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	parser *gofeed.Parser
}

// NewGoogleNewsRepository creates a NewsRepository backed by the Google News RSS search.
func NewGoogleNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	parser := gofeed.NewParser()
	parser.UserAgent = "Mozilla/5.0"
	return &googleNewsRepository{cfg: cfg, logger: log, parser: parser}
}

// SearchURL builds the feed URL for ticker.
func (r *googleNewsRepository) SearchURL(ticker string) string {
	sites := make([]string, 0, len(r.cfg.News.Sites))
	for _, s := range r.cfg.News.Sites {
		sites = append(sites, "site:"+s)
	}
	query := strings.TrimSpace(fmt.Sprintf("%s stock %s", ticker, strings.Join(sites, " OR ")))

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-IN")
	params.Set("gl", "IN")
	params.Set("ceid", "IN:en")
	return r.cfg.News.FeedURL + "?" + params.Encode()
}

// Search returns at most limit items in feed order.
func (r *googleNewsRepository) Search(ctx context.Context, ticker string, limit int) ([]dto.NewsItem, error) {
	feedURL := r.SearchURL(ticker)
	r.logger.Debug("Processing RSS feed", logger.StringField("url", feedURL))

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	items := make([]dto.NewsItem, 0, limit)
	for _, it := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		title, source := splitHeadline(it.Title)
		items = append(items, dto.NewsItem{
			Title:       title,
			Link:        it.Link,
			Source:      source,
			PublishedAt: it.PublishedParsed,
		})
	}
	return items, nil
}

// splitHeadline separates the trailing " - Publisher" that Google News appends to titles.
func splitHeadline(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}
