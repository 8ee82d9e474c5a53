package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docConfig(base string) *config.Config {
	return &config.Config{Exchange: config.Exchange{
		AttachmentBaseURL:  base + "/",
		AttachmentFolders:  []string{"AttachLive", "AttachHis"},
		MaxDocumentSizeMiB: 1,
	}}
}

func TestDocumentRepository_CandidateURLs(t *testing.T) {
	repo := NewDocumentRepository(docConfig("https://www.bseindia.com/xml-data/corpfiling"), logger.NewNop(), nil)

	assert.Equal(t, []string{
		"https://www.bseindia.com/xml-data/corpfiling/AttachLive/abc.pdf",
		"https://www.bseindia.com/xml-data/corpfiling/AttachHis/abc.pdf",
	}, repo.CandidateURLs(" abc.pdf "))
	assert.Empty(t, repo.CandidateURLs(""))
}

func TestDocumentRepository_FetchFallsBackToSecondCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/AttachLive/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	repo := NewDocumentRepository(docConfig(srv.URL), logger.NewNop(), srv.Client())
	doc, err := repo.Fetch(context.Background(), repo.CandidateURLs("abc.pdf"))

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/AttachHis/abc.pdf", doc.URL)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "%PDF-1.4 body", string(doc.Body))
}

func TestDocumentRepository_FetchAllCandidatesFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	repo := NewDocumentRepository(docConfig(srv.URL), logger.NewNop(), srv.Client())
	_, err := repo.Fetch(context.Background(), repo.CandidateURLs("abc.pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AttachLive")
	assert.Contains(t, err.Error(), "AttachHis")
}

func TestDocumentRepository_FetchURLRejectsEmptyAndOversized(t *testing.T) {
	big := strings.Repeat("x", 1<<20+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/big" {
			_, _ = w.Write([]byte(big))
		}
	}))
	defer srv.Close()

	repo := NewDocumentRepository(docConfig(srv.URL), logger.NewNop(), srv.Client())

	_, err := repo.FetchURL(context.Background(), srv.URL+"/empty")
	assert.ErrorContains(t, err, "empty")

	_, err = repo.FetchURL(context.Background(), srv.URL+"/big")
	assert.ErrorContains(t, err, "exceeds")
}
