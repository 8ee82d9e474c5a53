package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilingFixture(t *testing.T) FilingService {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"NCC.csv": "ticker,code,date,summary,sentiment,category,url\n" +
			"NCC,500294,2024-05-03,Third,30,capex,u3\n" +
			"NCC,500294,2024-05-01,First,10,results,u1\n" +
			"NCC,500294,2024-05-03,Fourth,-10,capex,u4\n",
		"TCS.csv": "date_of_filing,ticker_name,ticker_bse,url,summary,sentiment,category\n" +
			"2024-05-02,TCS,532540,u2,Second,50,order win\n" +
			"2024-05-10,TCS,532540,u5,Fifth,0,other\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return NewFilingService(repository.NewCSVRecordStore(dir, logger.NewNop()), logger.NewNop())
}

func datePtr(s string) *time.Time {
	d := mustDate(s)
	return &d
}

func urls(records []entity.FilingRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.URL)
	}
	return out
}

func TestFilingService_LoadMergesAndSortsByDate(t *testing.T) {
	svc := newFilingFixture(t)

	records, err := svc.Load(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3", "u4", "u5"}, urls(records))
}

func TestFilingService_LoadFiltersInclusively(t *testing.T) {
	svc := newFilingFixture(t)

	tests := []struct {
		name       string
		start, end *time.Time
		want       []string
	}{
		{"both bounds inclusive", datePtr("2024-05-02"), datePtr("2024-05-03"), []string{"u2", "u3", "u4"}},
		{"open start", nil, datePtr("2024-05-01"), []string{"u1"}},
		{"open end", datePtr("2024-05-04"), nil, []string{"u5"}},
		{"empty range", datePtr("2024-06-01"), datePtr("2024-06-30"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := svc.Load(context.Background(), tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, urls(records))
		})
	}
}

func TestFilingService_LoadIgnoresClockOfBounds(t *testing.T) {
	svc := newFilingFixture(t)
	end := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	records, err := svc.Load(context.Background(), &start, &end)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, urls(records))
}

func TestFilingService_LoadEmptyStore(t *testing.T) {
	svc := NewFilingService(repository.NewCSVRecordStore(filepath.Join(t.TempDir(), "none"), logger.NewNop()), logger.NewNop())

	records, err := svc.Load(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFilingService_Tickers(t *testing.T) {
	svc := newFilingFixture(t)

	tickers, err := svc.Tickers(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"NCC", "TCS"}, tickers)

	tickers, err = svc.Tickers(context.Background(), datePtr("2024-05-10"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS"}, tickers)
}

func TestFilingService_ByTickerIgnoresCase(t *testing.T) {
	svc := newFilingFixture(t)

	records, err := svc.ByTicker(context.Background(), " ncc ", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3", "u4"}, urls(records))

	records, err = svc.ByTicker(context.Background(), "INFY", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFilingService_SentimentTrend(t *testing.T) {
	svc := newFilingFixture(t)

	points, err := svc.SentimentTrend(context.Background(), "NCC", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []dto.SentimentPoint{
		{Date: mustDate("2024-05-01"), Average: 10, Filings: 1},
		{Date: mustDate("2024-05-03"), Average: 10, Filings: 2},
	}, points)

	points, err = svc.SentimentTrend(context.Background(), "INFY", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}
