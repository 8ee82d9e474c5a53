package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/pkg/common"
	"golang-filing-scryper/pkg/logger"
)

const feedDateLayout = "20060102"

// EventFeedRepository lists disclosure events for one exchange code.
type EventFeedRepository interface {
	// ListEvents pages through the feed until an empty page. A failing page ends the
	// listing: the events gathered so far are returned together with the error.
	ListEvents(ctx context.Context, code string, window dto.Window) ([]dto.DisclosureEvent, error)
}

type bseEventFeedRepository struct {
	client   *http.Client
	baseURL  string
	maxPages int
	logger   *logger.Logger
}

// NewBSEEventFeedRepository creates an EventFeedRepository backed by the BSE announcement API.
func NewBSEEventFeedRepository(cfg *config.Config, log *logger.Logger, client *http.Client) EventFeedRepository {
	if client == nil {
		client = &http.Client{Timeout: cfg.Exchange.RequestTimeout}
	}
	return &bseEventFeedRepository{
		client:   client,
		baseURL:  cfg.Exchange.AnnouncementURL,
		maxPages: cfg.Exchange.MaxPages,
		logger:   log,
	}
}

func (r *bseEventFeedRepository) ListEvents(ctx context.Context, code string, window dto.Window) ([]dto.DisclosureEvent, error) {
	var events []dto.DisclosureEvent

	for page := 1; r.maxPages <= 0 || page <= r.maxPages; page++ {
		rows, err := r.fetchPage(ctx, code, window, page)
		if err != nil {
			return events, fmt.Errorf("page %d: %w", page, err)
		}
		if len(rows) == 0 {
			return events, nil
		}
		events = append(events, rows...)
	}

	r.logger.Warn("Announcement feed page limit reached",
		logger.StringField("code", code),
		logger.IntField("max_pages", r.maxPages),
		logger.IntField("events", len(events)),
	)
	return events, nil
}

func (r *bseEventFeedRepository) fetchPage(ctx context.Context, code string, window dto.Window, page int) ([]dto.DisclosureEvent, error) {
	params := url.Values{}
	params.Set("pageno", strconv.Itoa(page))
	params.Set("strCat", "-1")
	params.Set("strPrevDate", window.Start.Format(feedDateLayout))
	params.Set("strScrip", code)
	params.Set("strSearch", "P")
	params.Set("strToDate", window.End.Format(feedDateLayout))
	params.Set("strType", "C")
	params.Set("subcategory", "")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create announcement request: %w", err)
	}
	req.Header.Set("User-Agent", common.DefaultUserAgent)
	req.Header.Set("Referer", common.BSEReferer)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch announcements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch announcements, status code: %d", resp.StatusCode)
	}

	var body dto.AnnouncementPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode announcements: %w", err)
	}

	r.logger.Debug("Fetched announcement page",
		logger.StringField("code", code),
		logger.IntField("page", page),
		logger.IntField("rows", len(body.Table)),
	)
	return body.Table, nil
}
