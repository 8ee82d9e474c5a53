package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/service"
	"golang-filing-scryper/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFilingService struct {
	records    []entity.FilingRecord
	start, end *time.Time
	ticker     string
}

func (s *stubFilingService) Load(_ context.Context, start, end *time.Time) ([]entity.FilingRecord, error) {
	s.start, s.end = start, end
	return s.records, nil
}

func (s *stubFilingService) Tickers(context.Context, *time.Time, *time.Time) ([]string, error) {
	return []string{"NCC"}, nil
}

func (s *stubFilingService) ByTicker(_ context.Context, ticker string, _, _ *time.Time) ([]entity.FilingRecord, error) {
	s.ticker = ticker
	return s.records, nil
}

func (s *stubFilingService) SentimentTrend(context.Context, string, *time.Time, *time.Time) ([]dto.SentimentPoint, error) {
	return []dto.SentimentPoint{}, nil
}

type stubNewsService struct{ err error }

func (s *stubNewsService) LatestNews(_ context.Context, ticker string, _ int) ([]dto.NewsItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []dto.NewsItem{{Title: ticker}}, nil
}

type stubScheduler struct {
	report *dto.RunReport
	err    error
	req    dto.IngestionRequest
}

func (s *stubScheduler) Start(context.Context) error { return nil }

func (s *stubScheduler) Refresh(_ context.Context, _ string, req dto.IngestionRequest, _ dto.ProgressObserver) (*dto.RunReport, error) {
	s.req = req
	return s.report, s.err
}

func (s *stubScheduler) History(context.Context, int) ([]entity.IngestionRun, error) {
	return []entity.IngestionRun{}, nil
}

type stubSummary struct{ err error }

func (s *stubSummary) Summarize(context.Context, string, dto.DocumentKind) (*dto.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	sentiment := 5.0
	return &dto.AnalysisResult{Summary: "ok", Sentiment: &sentiment, Category: "other"}, nil
}

func newTestServer(filings *stubFilingService, news *stubNewsService, sched *stubScheduler, summary *stubSummary) *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	api := e.Group("/api/v1")
	NewFilingHandler(filings, news, logger.NewNop()).RegisterRoutes(api)
	NewIngestionHandler(sched, logger.NewNop()).RegisterRoutes(api.Group("/ingestions"))
	NewSummaryHandler(summary, logger.NewNop()).RegisterRoutes(api.Group("/summaries"))
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestFilingHandler_DateRange(t *testing.T) {
	filings := &stubFilingService{records: []entity.FilingRecord{{TickerName: "NCC", URL: "u1"}}}
	e := newTestServer(filings, &stubNewsService{}, &stubScheduler{}, &stubSummary{})

	rec := do(e, http.MethodGet, "/api/v1/filings?start_date=2024-05-01&end_date=2024-05-11", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, filings.start)
	assert.Equal(t, "2024-05-01", filings.start.Format("2006-01-02"))
	assert.Equal(t, "2024-05-11", filings.end.Format("2006-01-02"))

	rec = do(e, http.MethodGet, "/api/v1/filings?start_date=2024-05-12&end_date=2024-05-11", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/filings?start_date=11-05-2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/filings?ticker=ncc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ncc", filings.ticker)
}

func TestFilingHandler_News(t *testing.T) {
	e := newTestServer(&stubFilingService{}, &stubNewsService{}, &stubScheduler{}, &stubSummary{})
	rec := do(e, http.MethodGet, "/api/v1/tickers/NCC/news?limit=3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"NCC"`)

	rec = do(e, http.MethodGet, "/api/v1/tickers/NCC/news?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e = newTestServer(&stubFilingService{}, &stubNewsService{err: errors.New("feed down")}, &stubScheduler{}, &stubSummary{})
	rec = do(e, http.MethodGet, "/api/v1/tickers/NCC/news", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestIngestionHandler_Trigger(t *testing.T) {
	report := &dto.RunReport{
		RunID:      "run-1",
		NewRecords: 1,
		Entities:   []dto.EntityReport{{Ticker: "NCC", Appended: 1}},
	}

	tests := []struct {
		name   string
		sched  *stubScheduler
		body   string
		status int
	}{
		{"success", &stubScheduler{report: report}, "", http.StatusOK},
		{"with body", &stubScheduler{report: report}, `{"lookback_days":3,"tickers":["NCC"]}`, http.StatusOK},
		{"invalid lookback", &stubScheduler{report: report}, `{"lookback_days":400}`, http.StatusBadRequest},
		{"run in progress", &stubScheduler{err: service.ErrRunInProgress}, "", http.StatusConflict},
		{"unknown ticker", &stubScheduler{err: service.ErrNoEntities}, `{"tickers":["INFY"]}`, http.StatusBadRequest},
		{"aborted", &stubScheduler{err: &dto.StageError{Stage: dto.StagePersist, Err: errors.New("read-only")}}, "", http.StatusInternalServerError},
		{"persist errors", &stubScheduler{report: report, err: errors.New("NCC: disk full")}, "", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(&stubFilingService{}, &stubNewsService{}, tt.sched, &stubSummary{})
			rec := do(e, http.MethodPost, "/api/v1/ingestions", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestIngestionHandler_SuccessBody(t *testing.T) {
	sched := &stubScheduler{report: &dto.RunReport{RunID: "run-1", NewRecords: 2}}
	e := newTestServer(&stubFilingService{}, &stubNewsService{}, sched, &stubSummary{})

	rec := do(e, http.MethodPost, "/api/v1/ingestions", `{"lookback_days":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, sched.req.LookbackDays)

	var resp dto.IngestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, "Done: 2 new filings.", resp.Status)
	assert.NotNil(t, resp.Failures)
}

func TestSummaryHandler(t *testing.T) {
	tests := []struct {
		name    string
		summary *stubSummary
		body    string
		status  int
	}{
		{"ok", &stubSummary{}, `{"url":"https://example.com/a.pdf","kind":"news"}`, http.StatusOK},
		{"missing url", &stubSummary{}, `{"kind":"news"}`, http.StatusBadRequest},
		{"unknown kind", &stubSummary{}, `{"url":"https://example.com/a.pdf","kind":"poem"}`, http.StatusBadRequest},
		{"extract failure", &stubSummary{err: &dto.StageError{Stage: dto.StageExtract, Err: errors.New("empty")}}, `{"url":"https://example.com/a.pdf"}`, http.StatusUnprocessableEntity},
		{"fetch failure", &stubSummary{err: &dto.StageError{Stage: dto.StageFetch, Err: errors.New("404")}}, `{"url":"https://example.com/a.pdf"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(&stubFilingService{}, &stubNewsService{}, &stubScheduler{}, tt.summary)
			rec := do(e, http.MethodPost, "/api/v1/summaries", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
