package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/utils"
)

// FilingService is the read side over the per-ticker filing stores.
type FilingService interface {
	// Load merges every ticker store and keeps rows whose date lies in [start, end].
	// A nil bound is open.
	Load(ctx context.Context, start, end *time.Time) ([]entity.FilingRecord, error)
	Tickers(ctx context.Context, start, end *time.Time) ([]string, error)
	ByTicker(ctx context.Context, ticker string, start, end *time.Time) ([]entity.FilingRecord, error)
	SentimentTrend(ctx context.Context, ticker string, start, end *time.Time) ([]dto.SentimentPoint, error)
}

type filingService struct {
	store  repository.RecordStore
	logger *logger.Logger
}

// NewFilingService creates a new FilingService.
func NewFilingService(store repository.RecordStore, log *logger.Logger) FilingService {
	return &filingService{store: store, logger: log}
}

func (s *filingService) Load(ctx context.Context, start, end *time.Time) ([]entity.FilingRecord, error) {
	all, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	var from, to time.Time
	if start != nil {
		from = utils.TruncateToDate(*start)
	}
	if end != nil {
		to = utils.TruncateToDate(*end)
	}

	records := make([]entity.FilingRecord, 0, len(all))
	for _, rec := range all {
		d := utils.TruncateToDate(rec.DateOfFiling)
		if start != nil && d.Before(from) {
			continue
		}
		if end != nil && d.After(to) {
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateOfFiling.Before(records[j].DateOfFiling)
	})
	return records, nil
}

func (s *filingService) Tickers(ctx context.Context, start, end *time.Time) ([]string, error) {
	records, err := s.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tickers := make([]string, 0)
	for _, rec := range records {
		if rec.TickerName == "" {
			continue
		}
		if _, ok := seen[rec.TickerName]; ok {
			continue
		}
		seen[rec.TickerName] = struct{}{}
		tickers = append(tickers, rec.TickerName)
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (s *filingService) ByTicker(ctx context.Context, ticker string, start, end *time.Time) ([]entity.FilingRecord, error) {
	records, err := s.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	ticker = strings.TrimSpace(ticker)
	filtered := make([]entity.FilingRecord, 0)
	for _, rec := range records {
		if strings.EqualFold(rec.TickerName, ticker) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// SentimentTrend averages the sentiment of a ticker's filings per calendar day.
func (s *filingService) SentimentTrend(ctx context.Context, ticker string, start, end *time.Time) ([]dto.SentimentPoint, error) {
	records, err := s.ByTicker(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	var points []dto.SentimentPoint
	for _, rec := range records {
		d := utils.TruncateToDate(rec.DateOfFiling)
		if n := len(points); n > 0 && points[n-1].Date.Equal(d) {
			p := &points[n-1]
			p.Average = (p.Average*float64(p.Filings) + rec.Sentiment) / float64(p.Filings+1)
			p.Filings++
			continue
		}
		points = append(points, dto.SentimentPoint{Date: d, Average: rec.Sentiment, Filings: 1})
	}
	if points == nil {
		points = []dto.SentimentPoint{}
	}
	return points, nil
}
