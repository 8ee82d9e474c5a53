package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/service"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/utils"

	"github.com/labstack/echo/v4"
)

// FilingHandler handles HTTP requests for stored filings.
type FilingHandler struct {
	filingService service.FilingService
	newsService   service.NewsService
	logger        *logger.Logger
}

// NewFilingHandler creates a new FilingHandler.
func NewFilingHandler(filingService service.FilingService, newsService service.NewsService, logger *logger.Logger) *FilingHandler {
	return &FilingHandler{filingService: filingService, newsService: newsService, logger: logger}
}

// RegisterRoutes registers the filing routes to the Echo group.
func (h *FilingHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/filings", h.GetFilings)
	g.GET("/tickers", h.GetTickers)
	g.GET("/tickers/:name/sentiment", h.GetSentimentTrend)
	g.GET("/tickers/:name/news", h.GetNews)
}

// GetFilings godoc
// @Summary List filings
// @Description Merge all ticker stores and filter by an inclusive date range
// @Tags filings
// @Produce  json
// @Param   start_date  query   string  false  "First date (YYYY-MM-DD), inclusive"
// @Param   end_date    query   string  false  "Last date (YYYY-MM-DD), inclusive"
// @Param   ticker      query   string  false  "Ticker name, case-insensitive"
// @Success 200 {array} entity.FilingRecord
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /filings [get]
func (h *FilingHandler) GetFilings(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	if ticker := c.QueryParam("ticker"); ticker != "" {
		records, err := h.filingService.ByTicker(ctx, ticker, start, end)
		if err != nil {
			h.logger.Error("Failed to load filings", logger.ErrorField(err), logger.StringField("ticker", ticker))
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load filings"})
		}
		return c.JSON(http.StatusOK, records)
	}

	records, err := h.filingService.Load(ctx, start, end)
	if err != nil {
		h.logger.Error("Failed to load filings", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load filings"})
	}
	return c.JSON(http.StatusOK, records)
}

// GetTickers godoc
// @Summary List tickers
// @Description Distinct ticker names that have filings in the date range
// @Tags filings
// @Produce  json
// @Param   start_date  query   string  false  "First date (YYYY-MM-DD), inclusive"
// @Param   end_date    query   string  false  "Last date (YYYY-MM-DD), inclusive"
// @Success 200 {array} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers [get]
func (h *FilingHandler) GetTickers(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	tickers, err := h.filingService.Tickers(c.Request().Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to list tickers", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list tickers"})
	}
	return c.JSON(http.StatusOK, tickers)
}

// GetSentimentTrend godoc
// @Summary Daily sentiment of a ticker
// @Description Average filing sentiment per day, oldest first
// @Tags filings
// @Produce  json
// @Param   name        path    string  true   "Ticker name"
// @Param   start_date  query   string  false  "First date (YYYY-MM-DD), inclusive"
// @Param   end_date    query   string  false  "Last date (YYYY-MM-DD), inclusive"
// @Success 200 {array} dto.SentimentPoint
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers/{name}/sentiment [get]
func (h *FilingHandler) GetSentimentTrend(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	points, err := h.filingService.SentimentTrend(c.Request().Context(), c.Param("name"), start, end)
	if err != nil {
		h.logger.Error("Failed to build sentiment trend", logger.ErrorField(err), logger.StringField("ticker", c.Param("name")))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to build sentiment trend"})
	}
	return c.JSON(http.StatusOK, points)
}

// GetNews godoc
// @Summary Latest news of a ticker
// @Description Headlines from the Google News RSS search
// @Tags news
// @Produce  json
// @Param   name   path    string  true   "Ticker name"
// @Param   limit  query   int     false  "Maximum number of items"
// @Success 200 {array} dto.NewsItem
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /tickers/{name}/news [get]
func (h *FilingHandler) GetNews(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = n
	}

	items, err := h.newsService.LatestNews(c.Request().Context(), c.Param("name"), limit)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, items)
}

func dateRange(c echo.Context) (*time.Time, *time.Time, error) {
	start, err := optionalDate(c.QueryParam("start_date"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := optionalDate(c.QueryParam("end_date"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end_date: %w", err)
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("start_date is after end_date")
	}
	return start, end, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(utils.DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
