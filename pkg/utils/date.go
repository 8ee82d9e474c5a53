package utils

import (
	"log"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in persisted filing rows.
const DateLayout = "2006-01-02"

func GetISTLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

func TimeNowIST() time.Time {
	return time.Now().In(GetISTLocation())
}

// TruncateToDate drops the clock part of t, keeping its calendar date in t's location.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"20060102",
	"02/01/2006",
	"02-01-2006",
}

// ParseDate parses the calendar date of s using the layouts seen in exchange feeds
// and persisted CSVs. The result is midnight UTC of that date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateToDate(t), true
		}
	}
	// Feed timestamps sometimes carry fractional seconds of arbitrary length.
	if i := strings.IndexByte(s, 'T'); i == len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:i]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
