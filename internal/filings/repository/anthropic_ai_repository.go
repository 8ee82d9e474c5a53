package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"golang.org/x/time/rate"
)

type anthropicAIRepository struct {
	client         anthropic.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewAnthropicAIRepository creates an AIRepository backed by the Anthropic Messages API.
func NewAnthropicAIRepository(cfg *config.Config, log *logger.Logger, client anthropic.Client) AIRepository {
	return &anthropicAIRepository{
		client:         client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Anthropic.MaxRequestPerMinute),
	}
}

func (r *anthropicAIRepository) Analyze(ctx context.Context, kind dto.DocumentKind, text string) (*dto.AnalysisResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	prompt := BuildAnalyzePrompt(kind, text)
	r.logger.Debug("Sending request to Anthropic API", logger.StringField("model", r.cfg.Anthropic.Model))

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(r.cfg.Anthropic.Model),
		MaxTokens:   r.cfg.Anthropic.MaxTokens,
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("no content found in Anthropic response")
	}
	return parseAnalysisJSON(out.String())
}
