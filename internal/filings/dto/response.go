package dto

import "time"

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage Stage  `json:"stage,omitempty"`
}

// IngestionRequest is the optional body of a manual refresh.
type IngestionRequest struct {
	LookbackDays int      `json:"lookback_days" validate:"gte=0,lte=365"`
	Tickers      []string `json:"tickers"`
}

// IngestionResponse is returned once a manual refresh has finished.
type IngestionResponse struct {
	RunID      string         `json:"run_id"`
	NewRecords int            `json:"new_records"`
	Status     string         `json:"status"`
	Failures   []StageFailure `json:"failures"`
}

// SentimentPoint is the average sentiment of one ticker on one day.
type SentimentPoint struct {
	Date    time.Time `json:"date"`
	Average float64   `json:"average"`
	Filings int       `json:"filings"`
}

// NewsItem is one headline from the news feed.
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
