package repository

import (
	"fmt"
	"strings"

	"golang-filing-scryper/internal/filings/dto"
)

type promptField struct {
	key         string
	instruction string
}

var (
	fieldSummary   = promptField{"summary", "a brief summary of the financial information in the text. Maximum 2 lines, bullet points."}
	fieldSentiment = promptField{"sentiment", "how bullish are you on its stock based on the information in the text, as a number. 100 = very bullish, -100 = very bearish."}
	fieldCategory  = promptField{"category", "a short label (1-3 words) for the type of disclosure, e.g. \"capex\", \"order win\", \"results\", \"dividend\", \"management change\"."}
	fieldDate      = promptField{"date", "extract the date on which the text has been reported, in yyyy-mm-dd format."}
	fieldHeadwinds = promptField{"headwinds", "if you found any business headwinds, write here. Maximum 3 lines, bullet points."}
	fieldTailwinds = promptField{"tailwinds", "if you found any business tailwinds, write here. Maximum 3 lines, bullet points."}
	fieldForward   = promptField{"key_forward_looking_statements", "write here if you found any forward-looking statements. Maximum 3 lines, bullet points."}
	fieldGuidance  = promptField{"management_guidance", "write here if company management provided any revenue growth, margin or eps growth guidance. Maximum 3 lines, bullet points."}
	fieldUpside    = promptField{"potential_upside", "if available, give analyst target price and potential upside in %."}
)

var templateFields = map[dto.DocumentKind][]promptField{
	dto.KindGeneral:         {fieldDate, fieldSummary, fieldSentiment, fieldCategory, fieldHeadwinds, fieldTailwinds, fieldForward, fieldGuidance, fieldUpside},
	dto.KindNews:            {fieldDate, fieldSummary, fieldSentiment, fieldCategory, fieldHeadwinds, fieldTailwinds},
	dto.KindEarningsCall:    {fieldDate, fieldSummary, fieldSentiment, fieldCategory, fieldHeadwinds, fieldTailwinds, fieldForward, fieldGuidance},
	dto.KindResearchReport:  {fieldDate, fieldSummary, fieldSentiment, fieldCategory, fieldHeadwinds, fieldTailwinds, fieldUpside},
	dto.KindCorporateFiling: {fieldSummary, fieldSentiment, fieldCategory},
}

var templateSubjects = map[dto.DocumentKind]string{
	dto.KindGeneral:         "text",
	dto.KindNews:            "news story",
	dto.KindEarningsCall:    "earnings call transcript",
	dto.KindResearchReport:  "research report",
	dto.KindCorporateFiling: "filing",
}

// BuildAnalyzePrompt renders the instruction template for kind around text.
func BuildAnalyzePrompt(kind dto.DocumentKind, text string) string {
	fields, ok := templateFields[kind]
	if !ok {
		kind = dto.KindGeneral
		fields = templateFields[kind]
	}

	var keys strings.Builder
	for i, f := range fields {
		keys.WriteString(fmt.Sprintf("%d. \"%s\": %s\n", i+1, f.key, f.instruction))
	}

	return fmt.Sprintf(`You're an expert in reading news stories, research reports, and other financial texts on Indian stocks.

Understand the following %[1]s and analyze it carefully.

Respond **only** in valid JSON format with exactly the following keys:
%[2]s
%[3]s text:
%[4]s
`, templateSubjects[kind], keys.String(), capitalize(templateSubjects[kind]), text)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
