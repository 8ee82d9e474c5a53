package dto

import (
	"time"

	"golang-filing-scryper/pkg/utils"
)

// DisclosureEvent is one row of the exchange announcement feed.
type DisclosureEvent struct {
	DisseminatedAt string `json:"DissemDT"`
	Attachment     string `json:"ATTACHMENTNAME"`
	Headline       string `json:"HEADLINE"`
	Subject        string `json:"NEWSSUB"`
	Category       string `json:"CATEGORYNAME"`
	NewsID         string `json:"NEWSID"`
}

// AnnouncementPage is the BSE announcement API response envelope.
type AnnouncementPage struct {
	Table []DisclosureEvent `json:"Table"`
}

// Window is an inclusive calendar-date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// LookbackWindow returns [now-days, now] as calendar dates.
func LookbackWindow(now time.Time, days int) Window {
	end := utils.TruncateToDate(now)
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}
