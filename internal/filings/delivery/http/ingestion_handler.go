package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/service"
	"golang-filing-scryper/pkg/common"
	"golang-filing-scryper/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IngestionHandler handles HTTP requests for ingestion runs.
type IngestionHandler struct {
	schedulerService service.SchedulerService
	logger           *logger.Logger
}

// NewIngestionHandler creates a new IngestionHandler.
func NewIngestionHandler(schedulerService service.SchedulerService, logger *logger.Logger) *IngestionHandler {
	return &IngestionHandler{schedulerService: schedulerService, logger: logger}
}

// RegisterRoutes registers the ingestion routes to the Echo group.
func (h *IngestionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.TriggerIngestion)
	g.GET("", h.GetRunHistory)
}

// TriggerIngestion godoc
// @Summary Run an ingestion now
// @Description Fetch, analyse and store new filings. Blocks until the run finishes.
// @Tags ingestions
// @Accept  json
// @Produce  json
// @Param   request  body    dto.IngestionRequest  false  "Tickers and lookback override"
// @Success 200 {object} dto.IngestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /ingestions [post]
func (h *IngestionHandler) TriggerIngestion(c echo.Context) error {
	var req dto.IngestionRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
		}
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	report, err := h.schedulerService.Refresh(c.Request().Context(), common.TriggerManual, req, nil)
	switch {
	case errors.Is(err, service.ErrRunInProgress):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Stage: dto.StageLock})
	case errors.Is(err, service.ErrNoEntities):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case report == nil:
		h.logger.Error("Ingestion run failed", logger.ErrorField(err))
		resp := dto.ErrorResponse{Error: err.Error()}
		var stageErr *dto.StageError
		if errors.As(err, &stageErr) {
			resp.Stage = stageErr.Stage
		}
		return c.JSON(http.StatusInternalServerError, resp)
	}

	failures := report.Failures()
	if failures == nil {
		failures = []dto.StageFailure{}
	}
	resp := dto.IngestionResponse{
		RunID:      report.RunID,
		NewRecords: report.NewRecords,
		Status:     report.StatusMessage(),
		Failures:   failures,
	}
	if err != nil {
		h.logger.Error("Ingestion run finished with persist errors", logger.ErrorField(err), logger.StringField("run_id", report.RunID))
		return c.JSON(http.StatusInternalServerError, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetRunHistory godoc
// @Summary List ingestion runs
// @Description Most recent ingestion runs, newest first
// @Tags ingestions
// @Produce  json
// @Param   limit  query   int  false  "Maximum number of runs"
// @Success 200 {array} entity.IngestionRun
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /ingestions [get]
func (h *IngestionHandler) GetRunHistory(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = n
	}

	runs, err := h.schedulerService.History(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get run history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get run history"})
	}
	return c.JSON(http.StatusOK, runs)
}
