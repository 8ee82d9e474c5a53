package service

import (
	"context"
	"errors"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/textextract"
	"golang-filing-scryper/pkg/utils"
)

// SummaryService analyses an arbitrary document on demand.
type SummaryService interface {
	// Summarize downloads url and analyses it with the template for kind.
	// Errors are *dto.StageError so callers can tell which step failed.
	Summarize(ctx context.Context, url string, kind dto.DocumentKind) (*dto.AnalysisResult, error)
}

type summaryService struct {
	cfg     *config.Config
	logger  *logger.Logger
	docRepo repository.DocumentRepository
	aiRepo  repository.AIRepository
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(cfg *config.Config, log *logger.Logger, docRepo repository.DocumentRepository, aiRepo repository.AIRepository) SummaryService {
	return &summaryService{cfg: cfg, logger: log, docRepo: docRepo, aiRepo: aiRepo}
}

func (s *summaryService) Summarize(ctx context.Context, url string, kind dto.DocumentKind) (*dto.AnalysisResult, error) {
	doc, err := s.docRepo.FetchURL(ctx, url)
	if err != nil {
		return nil, &dto.StageError{Stage: dto.StageFetch, Err: err}
	}

	text, err := s.extract(doc, kind)
	if err != nil {
		return nil, &dto.StageError{Stage: dto.StageExtract, Err: err}
	}
	text = utils.TruncateRunes(utils.SafeText(text), s.cfg.AI.MaxInputChars)

	result, err := s.aiRepo.Analyze(ctx, kind, text)
	if err != nil {
		return nil, &dto.StageError{Stage: dto.StageAnalyze, Err: err}
	}

	s.logger.Info("Summarized document",
		logger.StringField("url", url),
		logger.StringField("kind", string(kind)),
		logger.StringField("category", result.Category),
	)
	return result, nil
}

// extract prefers the article body for news pages and the full text otherwise.
func (s *summaryService) extract(doc *dto.Document, kind dto.DocumentKind) (string, error) {
	format := textextract.DetectFormat(doc.URL, doc.ContentType, doc.Body)
	if format == textextract.FormatHTML && kind == dto.KindNews {
		text, err := textextract.ExtractArticle(doc.Body)
		if err != nil {
			return "", err
		}
		if text == "" {
			return "", textextract.ErrEmptyText
		}
		return text, nil
	}

	text, err := textextract.Extract(format, doc.Body)
	if errors.Is(err, textextract.ErrUnsupportedFormat) {
		s.logger.Debug("Unsupported document format", logger.StringField("url", doc.URL), logger.StringField("content_type", doc.ContentType))
	}
	return text, err
}
