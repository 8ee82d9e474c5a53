package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang-filing-scryper/internal/filings/dto"

	"github.com/go-playground/validator/v10"
)

var analysisValidator = validator.New()

// sentimentKeys lists the keys a model may use for the sentiment score, in priority order.
var sentimentKeys = []string{"sentiment", "bullishness_indicator (-100 to 100)", "bullishness_indicator", "bullishness"}

// parseAnalysisJSON turns a model reply into an AnalysisResult. Replies may be wrapped in
// markdown fences and may use bullet arrays where a string was requested.
func parseAnalysisJSON(raw string) (*dto.AnalysisResult, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
	}

	result := &dto.AnalysisResult{
		Summary:  textValue(fields["summary"]),
		Category: textValue(fields["category"]),
		Fields:   fields,
	}
	for _, key := range sentimentKeys {
		if v, ok := numberValue(fields[key]); ok {
			result.Sentiment = &v
			break
		}
	}

	if err := analysisValidator.Struct(result); err != nil {
		return nil, fmt.Errorf("malformed analysis result: %w", err)
	}
	return result, nil
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			if s := textValue(item); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
