package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/pkg/utils"
)

// MaxMessageLength keeps each part under Telegram's 4096 character limit.
const MaxMessageLength = 4090

// FormatRunReportForTelegram formats an ingestion report into one or more Markdown messages,
// each no longer than MaxMessageLength.
func FormatRunReportForTelegram(report *dto.RunReport) []string {
	if report.NewRecords == 0 && len(report.Failures()) == 0 {
		return []string{fmt.Sprintf("🗂 *Filings Update* (%s to %s)\n\nNo new filings.",
			report.Window.Start.Format(utils.DateLayout), report.Window.End.Format(utils.DateLayout))}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("🗂 *Filings Update* (%s to %s)\n%s\n\n",
				report.Window.Start.Format(utils.DateLayout), report.Window.End.Format(utils.DateLayout), report.StatusMessage()))
		} else {
			current.WriteString(fmt.Sprintf("---*Filings Update Part %d*---\n\n", part))
		}
	}
	add := func(entry string) {
		if current.Len()+len(entry) > MaxMessageLength {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}

	startNewPart()
	for _, e := range report.Entities {
		for _, rec := range e.Records {
			var b strings.Builder
			b.WriteString(fmt.Sprintf("📈 *%s* · %s\n", rec.TickerName, rec.DateOfFiling.Format(utils.DateLayout)))
			b.WriteString(fmt.Sprintf("%s *Sentiment:* %.0f  🏷 *Category:* %s\n", sentimentIcon(rec.Sentiment), rec.Sentiment, rec.Category))
			b.WriteString(fmt.Sprintf("💬 %s\n", utils.TruncateRunes(rec.Summary, 1500)))
			b.WriteString(fmt.Sprintf("🔗 %s\n\n", rec.URL))
			add(b.String())
		}
	}

	if failures := report.Failures(); len(failures) > 0 {
		counts := make(map[dto.Stage]int)
		var order []dto.Stage
		for _, f := range failures {
			if counts[f.Stage] == 0 {
				order = append(order, f.Stage)
			}
			counts[f.Stage]++
		}
		var b strings.Builder
		b.WriteString("⚠️ *Skipped:*")
		for _, stage := range order {
			b.WriteString(fmt.Sprintf(" %s=%d", stage, counts[stage]))
		}
		b.WriteString("\n")
		add(b.String())
	}

	messages = append(messages, current.String())
	return messages
}

func sentimentIcon(score float64) string {
	switch {
	case score >= 30:
		return "🟢"
	case score <= -30:
		return "🔴"
	default:
		return "🟡"
	}
}

// FormatErrorAlertMessage formats a failure that stopped a scheduled run.
func FormatErrorAlertMessage(at time.Time, errType string, errMsg string) string {
	return fmt.Sprintf("📛 [ERROR ALERT]\n%s\n🔧 %s\n⚠️ %s\n", at.Format(time.RFC1123), errType, errMsg)
}
