package repository

import (
	"context"

	"golang-filing-scryper/internal/filings/dto"
)

// AIRepository is the external text-analysis capability.
type AIRepository interface {
	// Analyze renders the template for kind around text and parses the structured answer.
	Analyze(ctx context.Context, kind dto.DocumentKind, text string) (*dto.AnalysisResult, error)
}
