package entity

import "time"

// FilingRecord is one analysed disclosure, persisted as a row of its ticker's CSV.
// URL is the natural key within one ticker.
type FilingRecord struct {
	TickerName   string    `json:"ticker_name"`
	TickerCode   string    `json:"ticker_bse"`
	DateOfFiling time.Time `json:"date_of_filing"`
	Summary      string    `json:"summary"`
	Sentiment    float64   `json:"sentiment"`
	Category     string    `json:"category"`
	URL          string    `json:"url"`
}
