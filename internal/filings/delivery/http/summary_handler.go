package http

import (
	"errors"
	"net/http"

	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/service"
	"golang-filing-scryper/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SummaryHandler handles on-demand document summaries.
type SummaryHandler struct {
	summaryService service.SummaryService
	logger         *logger.Logger
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService service.SummaryService, logger *logger.Logger) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, logger: logger}
}

// RegisterRoutes registers the summary routes to the Echo group.
func (h *SummaryHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Summarize)
}

// Summarize godoc
// @Summary Summarise a document
// @Description Download a PDF or HTML document and analyse it with the template for its kind
// @Tags summaries
// @Accept  json
// @Produce  json
// @Param   request  body    dto.SummarizeRequest  true  "Document URL and kind"
// @Success 200 {object} dto.AnalysisResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /summaries [post]
func (h *SummaryHandler) Summarize(c echo.Context) error {
	var req dto.SummarizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}
	kind, err := dto.ParseDocumentKind(req.Kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	result, err := h.summaryService.Summarize(c.Request().Context(), req.URL, kind)
	if err != nil {
		h.logger.Warn("Failed to summarize document", logger.ErrorField(err), logger.StringField("url", req.URL))
		resp := dto.ErrorResponse{Error: err.Error()}
		var stageErr *dto.StageError
		if errors.As(err, &stageErr) {
			resp.Stage = stageErr.Stage
			if stageErr.Stage == dto.StageExtract {
				return c.JSON(http.StatusUnprocessableEntity, resp)
			}
		}
		return c.JSON(http.StatusBadGateway, resp)
	}
	return c.JSON(http.StatusOK, result)
}
