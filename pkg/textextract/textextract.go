package textextract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/mauidude/go-readability"
	"golang.org/x/net/html"
)

var (
	// ErrEmptyText is returned when a document yields no text.
	ErrEmptyText = errors.New("no text could be extracted from the document")
	// ErrUnsupportedFormat is returned for documents that are neither PDF nor HTML.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Format identifies how a document's bytes should be read.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatHTML    Format = "html"
	FormatUnknown Format = "unknown"
)

// DetectFormat picks a Format from the PDF magic bytes, then the Content-Type header, then the URL
// suffix, and finally sniffs the leading bytes for an HTML document.
func DetectFormat(url, contentType string, body []byte) Format {
	lowerURL := strings.ToLower(url)
	contentType = strings.ToLower(contentType)

	switch {
	case bytes.HasPrefix(body, []byte("%PDF")):
		return FormatPDF
	case strings.Contains(contentType, "application/pdf"):
		return FormatPDF
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		return FormatHTML
	case strings.HasSuffix(lowerURL, ".pdf"):
		return FormatPDF
	case strings.HasSuffix(lowerURL, ".html"), strings.HasSuffix(lowerURL, ".htm"):
		return FormatHTML
	}

	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	if bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html")) {
		return FormatHTML
	}
	return FormatUnknown
}

// Extract returns the plain text of body according to format.
func Extract(format Format, body []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = ExtractPDF(body)
	case FormatHTML:
		text, err = ExtractHTML(body)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// ExtractPDF concatenates the plain text of every page, one page per line block.
// Corrupt files can make the parser panic, so panics are turned into errors.
func ExtractPDF(body []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}

// ExtractHTML returns the document's text nodes, one per line, without script and style content.
func ExtractHTML(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				lines = append(lines, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.Join(lines, "\n"), nil
}

// ExtractArticle runs readability first to isolate the main article body,
// falling back to the full page text when readability finds nothing.
func ExtractArticle(body []byte) (string, error) {
	doc, err := readability.NewDocument(string(body))
	if err == nil {
		if text, err := ExtractHTML([]byte(doc.Content())); err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return ExtractHTML(body)
}
