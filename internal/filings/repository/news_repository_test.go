package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>NCC stock</title>
<item><title>NCC bags Rs 2,000 crore order - Moneycontrol</title><link>https://n/1</link><pubDate>Thu, 02 May 2024 10:00:00 GMT</pubDate></item>
<item><title>NCC Q4 results - The Economic Times</title><link>https://n/2</link><pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate></item>
<item><title>Third headline</title><link>https://n/3</link></item>
</channel></rss>`

func TestGoogleNewsRepository_Search(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	cfg := &config.Config{News: config.News{
		FeedURL: srv.URL,
		Sites:   []string{"moneycontrol.com", "economictimes.indiatimes.com"},
	}}
	repo := NewGoogleNewsRepository(cfg, logger.NewNop())

	items, err := repo.Search(context.Background(), "NCC", 2)
	require.NoError(t, err)

	assert.Equal(t, "NCC stock site:moneycontrol.com OR site:economictimes.indiatimes.com", query.Get("q"))
	assert.Equal(t, "en-IN", query.Get("hl"))
	assert.Equal(t, "IN:en", query.Get("ceid"))

	require.Len(t, items, 2)
	assert.Equal(t, "NCC bags Rs 2,000 crore order", items[0].Title)
	assert.Equal(t, "Moneycontrol", items[0].Source)
	assert.Equal(t, "https://n/1", items[0].Link)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, 2024, items[0].PublishedAt.Year())
}

func TestSplitHeadline(t *testing.T) {
	title, source := splitHeadline("Plain title")
	assert.Equal(t, "Plain title", title)
	assert.Empty(t, source)
}
