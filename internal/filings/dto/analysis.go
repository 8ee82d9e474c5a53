package dto

import "fmt"

// DocumentKind selects the prompt template used for analysis.
type DocumentKind string

const (
	KindGeneral         DocumentKind = "general"
	KindNews            DocumentKind = "news"
	KindEarningsCall    DocumentKind = "earnings_call"
	KindResearchReport  DocumentKind = "research_report"
	KindCorporateFiling DocumentKind = "corporate_filing"
)

// ParseDocumentKind validates s, defaulting to KindGeneral when empty.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch k := DocumentKind(s); k {
	case "":
		return KindGeneral, nil
	case KindGeneral, KindNews, KindEarningsCall, KindResearchReport, KindCorporateFiling:
		return k, nil
	default:
		return "", fmt.Errorf("unknown document kind %q", s)
	}
}

// AnalysisResult is the structured answer of the text-analysis service.
// Sentiment is passed through as returned, without clamping to -100..100.
type AnalysisResult struct {
	Summary   string         `json:"summary" validate:"required"`
	Sentiment *float64       `json:"sentiment" validate:"required"`
	Category  string         `json:"category" validate:"required"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// SummarizeRequest is the body of an on-demand summary request.
type SummarizeRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Kind string `json:"kind" validate:"omitempty,oneof=general news earnings_call research_report corporate_filing"`
}
