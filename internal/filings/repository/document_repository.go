package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/pkg/common"
	"golang-filing-scryper/pkg/logger"
)

// DocumentRepository downloads disclosure attachments and arbitrary documents.
type DocumentRepository interface {
	// CandidateURLs lists the storage locations an attachment may live at, in lookup order.
	CandidateURLs(attachment string) []string
	// Fetch returns the first candidate that resolves.
	Fetch(ctx context.Context, candidates []string) (*dto.Document, error)
	// FetchURL downloads a single URL.
	FetchURL(ctx context.Context, url string) (*dto.Document, error)
}

type documentRepository struct {
	client   *http.Client
	baseURL  string
	folders  []string
	maxBytes int64
	logger   *logger.Logger
}

// NewDocumentRepository creates a DocumentRepository for the exchange attachment store.
func NewDocumentRepository(cfg *config.Config, log *logger.Logger, client *http.Client) DocumentRepository {
	if client == nil {
		client = &http.Client{Timeout: cfg.Exchange.RequestTimeout}
	}
	return &documentRepository{
		client:   client,
		baseURL:  strings.TrimRight(cfg.Exchange.AttachmentBaseURL, "/"),
		folders:  cfg.Exchange.AttachmentFolders,
		maxBytes: int64(cfg.Exchange.MaxDocumentSizeMiB) << 20,
		logger:   log,
	}
}

func (r *documentRepository) CandidateURLs(attachment string) []string {
	attachment = strings.TrimSpace(attachment)
	if attachment == "" {
		return nil
	}
	urls := make([]string, 0, len(r.folders))
	for _, folder := range r.folders {
		urls = append(urls, fmt.Sprintf("%s/%s/%s", r.baseURL, folder, attachment))
	}
	return urls
}

func (r *documentRepository) Fetch(ctx context.Context, candidates []string) (*dto.Document, error) {
	if len(candidates) == 0 {
		return nil, errors.New("no candidate document URLs")
	}

	var errs []error
	for _, u := range candidates {
		doc, err := r.FetchURL(ctx, u)
		if err == nil {
			return doc, nil
		}
		r.logger.Debug("Document candidate did not resolve", logger.StringField("url", u), logger.ErrorField(err))
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

func (r *documentRepository) FetchURL(ctx context.Context, url string) (*dto.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create document request: %w", err)
	}
	req.Header.Set("User-Agent", common.DefaultUserAgent)
	req.Header.Set("Referer", common.BSEReferer)
	req.Header.Set("Accept", "application/pdf,text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch document %s, status code: %d", url, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if r.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, r.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", url, err)
	}
	if r.maxBytes > 0 && int64(len(body)) > r.maxBytes {
		return nil, fmt.Errorf("document %s exceeds %d bytes", url, r.maxBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("document %s is empty", url)
	}

	return &dto.Document{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
