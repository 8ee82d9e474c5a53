package telegram

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/internal/filings/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var window = dto.Window{
	Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
}

func TestFormatRunReportForTelegram_NoNewFilings(t *testing.T) {
	msgs := FormatRunReportForTelegram(&dto.RunReport{Window: window})

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "2024-05-01 to 2024-05-11")
	assert.Contains(t, msgs[0], "No new filings.")
}

func TestFormatRunReportForTelegram_RecordsAndSkips(t *testing.T) {
	report := &dto.RunReport{
		Window:     window,
		NewRecords: 1,
		Entities: []dto.EntityReport{{
			Ticker:   "NCC",
			Appended: 1,
			Records: []entity.FilingRecord{{
				TickerName: "NCC", DateOfFiling: window.End, Summary: "Order win", Sentiment: 42, Category: "order win", URL: "https://x/A.pdf",
			}},
			Failures: []dto.StageFailure{
				{Stage: dto.StageFetch}, {Stage: dto.StageAnalyze}, {Stage: dto.StageFetch},
			},
		}},
	}

	msgs := FormatRunReportForTelegram(report)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Done: 1 new filings.")
	assert.Contains(t, msgs[0], "🟢 *Sentiment:* 42")
	assert.Contains(t, msgs[0], "https://x/A.pdf")
	assert.Contains(t, msgs[0], "*Skipped:* fetch=2 analyze=1")
}

func TestFormatRunReportForTelegram_SplitsLongReports(t *testing.T) {
	var records []entity.FilingRecord
	for i := 0; i < 20; i++ {
		records = append(records, entity.FilingRecord{
			TickerName: "NCC", DateOfFiling: window.End, Summary: strings.Repeat("capex ", 150), Sentiment: -40, Category: "capex", URL: "https://x/A.pdf",
		})
	}
	report := &dto.RunReport{
		Window:     window,
		NewRecords: len(records),
		Entities:   []dto.EntityReport{{Ticker: "NCC", Appended: len(records), Records: records}},
	}

	msgs := FormatRunReportForTelegram(report)
	require.Greater(t, len(msgs), 1)
	for _, m := range msgs {
		assert.LessOrEqual(t, len(m), MaxMessageLength)
		assert.True(t, utf8.ValidString(m))
	}
	assert.Contains(t, msgs[1], "Part 2")
	assert.Equal(t, len(records), strings.Count(strings.Join(msgs, ""), "🔴"))
}

func TestFormatErrorAlertMessage(t *testing.T) {
	msg := FormatErrorAlertMessage(window.End, "ingestion", "persist: disk full")
	assert.Contains(t, msg, "ERROR ALERT")
	assert.Contains(t, msg, "persist: disk full")
}
